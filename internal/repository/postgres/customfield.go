package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/service/customfield"
	"github.com/lib/pq"
)

// CustomFieldRepo implements customfield.Repository and contact.FieldLookup
// against PostgreSQL.
type CustomFieldRepo struct{ db *sql.DB }

// NewCustomFieldRepo creates a Postgres-backed custom field repository.
func NewCustomFieldRepo(db *sql.DB) *CustomFieldRepo { return &CustomFieldRepo{db: db} }

const fieldColumns = `id, name, field_type, created_at`

func (r *CustomFieldRepo) List(ctx context.Context) ([]domain.CustomField, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+fieldColumns+` FROM custom_fields ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}
	defer rows.Close()
	return scanFields(rows)
}

func (r *CustomFieldRepo) Get(ctx context.Context, id string) (*domain.CustomField, error) {
	if !validID(id) {
		return nil, customfield.ErrNotFound
	}
	var f domain.CustomField
	err := r.db.QueryRowContext(ctx,
		`SELECT `+fieldColumns+` FROM custom_fields WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.FieldType, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customfield.ErrNotFound
		}
		return nil, fmt.Errorf("get custom field: %w", err)
	}
	return &f, nil
}

func (r *CustomFieldRepo) Create(ctx context.Context, f *domain.CustomField) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_fields (id, name, field_type, created_at)
		VALUES ($1, $2, $3, $4)
	`, f.ID, f.Name, string(f.FieldType), f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert custom field: %w", err)
	}
	return nil
}

func (r *CustomFieldRepo) Update(ctx context.Context, f *domain.CustomField) error {
	if !validID(f.ID) {
		return customfield.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE custom_fields SET name = $2, field_type = $3 WHERE id = $1`,
		f.ID, f.Name, string(f.FieldType),
	)
	if err != nil {
		return fmt.Errorf("update custom field: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return customfield.ErrNotFound
	}
	return nil
}

// Delete removes the definition. Values referencing it go with it through
// the ON DELETE CASCADE foreign key.
func (r *CustomFieldRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return customfield.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_fields WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete custom field: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return customfield.ErrNotFound
	}
	return nil
}

// LookupFields implements contact.FieldLookup.
func (r *CustomFieldRepo) LookupFields(ctx context.Context, ids []string) (map[string]domain.CustomField, error) {
	out := make(map[string]domain.CustomField)
	ids = validIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+fieldColumns+` FROM custom_fields WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lookup custom fields: %w", err)
	}
	defer rows.Close()

	fields, err := scanFields(rows)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		out[f.ID] = f
	}
	return out, nil
}

func scanFields(rows *sql.Rows) ([]domain.CustomField, error) {
	out := []domain.CustomField{}
	for rows.Next() {
		var f domain.CustomField
		if err := rows.Scan(&f.ID, &f.Name, &f.FieldType, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custom field: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
