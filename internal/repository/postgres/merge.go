package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/service/merge"
	"github.com/lib/pq"
)

// MergeRepo implements merge.Store against PostgreSQL. Apply runs the whole
// plan in one transaction.
type MergeRepo struct{ db *sql.DB }

// NewMergeRepo creates a Postgres-backed merge store.
func NewMergeRepo(db *sql.DB) *MergeRepo { return &MergeRepo{db: db} }

func (r *MergeRepo) LoadContacts(ctx context.Context, ids []string) ([]domain.Contact, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	defer rows.Close()

	var (
		out   []domain.Contact
		found []string
	)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
		found = append(found, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	values, err := loadValues(ctx, r.db, found)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CustomFieldValues = withDefault(values[out[i].ID])
	}
	return out, nil
}

func (r *MergeRepo) Apply(ctx context.Context, p *merge.Plan) error {
	if p.Empty() {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge: %w", err)
	}
	defer tx.Rollback()

	for _, u := range p.Updates {
		res, err := tx.ExecContext(ctx, `
			UPDATE contacts SET first_name = $2, last_name = $3, phone = $4, updated_at = $5
			WHERE id = $1
		`, u.ContactID, u.FirstName, u.LastName, u.Phone, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update survivor %s: %w", u.ContactID, err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return fmt.Errorf("update survivor %s: not found", u.ContactID)
		}
	}

	for _, ins := range p.Inserts {
		if err := insertValue(ctx, tx, ins.ContactID, ins.CustomFieldID, ins.Value); err != nil {
			return err
		}
	}

	if len(p.Deletes) > 0 {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM contacts WHERE id = ANY($1::uuid[])`, pq.Array(p.Deletes))
		if err != nil {
			return fmt.Errorf("delete losers: %w", err)
		}
		if n, _ := res.RowsAffected(); n != int64(len(p.Deletes)) {
			return fmt.Errorf("delete losers: removed %d of %d", n, len(p.Deletes))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge: %w", err)
	}
	return nil
}
