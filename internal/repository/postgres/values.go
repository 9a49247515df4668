package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/lib/pq"
)

// loadValues returns the custom field values of every contact in ids, keyed
// by contact id, in insertion order with field names resolved.
func loadValues(ctx context.Context, q querier, ids []string) (map[string][]domain.CustomFieldValue, error) {
	out := make(map[string][]domain.CustomFieldValue, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT v.contact_id, v.custom_field_id, f.name, v.string_value, v.int_value, v.bool_value
		FROM contact_custom_field_values v
		JOIN custom_fields f ON f.id = v.custom_field_id
		WHERE v.contact_id = ANY($1::uuid[])
		ORDER BY v.seq
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load custom field values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			contactID string
			cv        domain.CustomFieldValue
			s         sql.NullString
			n         sql.NullInt64
			b         sql.NullBool
		)
		if err := rows.Scan(&contactID, &cv.CustomFieldID, &cv.CustomFieldName, &s, &n, &b); err != nil {
			return nil, fmt.Errorf("scan custom field value: %w", err)
		}
		v, err := domain.ValueFromSlots(nullString(s), nullInt(n), nullBool(b))
		if err != nil {
			return nil, fmt.Errorf("custom field value %s/%s: %w", contactID, cv.CustomFieldID, err)
		}
		cv.Value = v
		out[contactID] = append(out[contactID], cv)
	}
	return out, rows.Err()
}

// insertValue writes one value row. The slot columns not used by the value's
// kind are NULL.
func insertValue(ctx context.Context, q querier, contactID, fieldID string, v domain.FieldValue) error {
	s, n, b := v.Slots()
	_, err := q.ExecContext(ctx, `
		INSERT INTO contact_custom_field_values (contact_id, custom_field_id, string_value, int_value, bool_value)
		VALUES ($1, $2, $3, $4, $5)
	`, contactID, fieldID, s, n, b)
	if err != nil {
		return fmt.Errorf("insert custom field value %s: %w", fieldID, err)
	}
	return nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullBool(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	return &b.Bool
}
