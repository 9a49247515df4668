package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/service/contact"
)

// ContactRepo implements contact.Repository against PostgreSQL.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contact repository.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

const contactColumns = `id, first_name, last_name, email, phone, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (domain.Contact, error) {
	var (
		c     domain.Contact
		phone sql.NullString
	)
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &phone, &c.CreatedAt, &c.UpdatedAt)
	c.Phone = nullString(phone)
	return c, err
}

func (r *ContactRepo) Get(ctx context.Context, id string) (*domain.Contact, error) {
	if !validID(id) {
		return nil, contact.ErrNotFound
	}
	c, err := scanContact(r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contact.ErrNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}

	values, err := loadValues(ctx, r.db, []string{c.ID})
	if err != nil {
		return nil, err
	}
	c.CustomFieldValues = withDefault(values[c.ID])
	return &c, nil
}

var sortColumns = map[contact.SortField]string{
	contact.SortByCreatedAt: "created_at",
	contact.SortByUpdatedAt: "updated_at",
	contact.SortByFirstName: "first_name",
	contact.SortByLastName:  "last_name",
	contact.SortByEmail:     "email",
}

func (r *ContactRepo) List(ctx context.Context, f contact.ListFilter) ([]domain.Contact, int, error) {
	var (
		where []string
		args  []any
	)
	addLike := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, containsPattern(value))
		where = append(where, fmt.Sprintf(`%s LIKE $%d`, column, len(args)))
	}
	addLike("first_name", f.FirstName)
	addLike("last_name", f.LastName)
	addLike("email", f.Email)

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = total
	}
	pageArgs := append(append([]any(nil), args...), limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM contacts%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		contactColumns, clause, column, dir, dir, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := []domain.Contact{}
	var ids []string
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}

	values, err := loadValues(ctx, r.db, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].CustomFieldValues = withDefault(values[out[i].ID])
	}
	return out, total, nil
}

func (r *ContactRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM contacts WHERE lower(email) = $1)`,
		domain.NormalizeEmail(email),
	).Scan(&exists)
	return exists, err
}

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create contact: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contacts (id, first_name, last_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return contact.ErrEmailExists
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	for _, v := range c.CustomFieldValues {
		if err := insertValue(ctx, tx, c.ID, v.CustomFieldID, v.Value); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create contact: %w", err)
	}
	return nil
}

func (r *ContactRepo) Update(ctx context.Context, c *domain.Contact, replaceValues bool) error {
	if !validID(c.ID) {
		return contact.ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update contact: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE contacts SET first_name = $2, last_name = $3, phone = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.FirstName, c.LastName, c.Phone, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return contact.ErrNotFound
	}

	if replaceValues {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM contact_custom_field_values WHERE contact_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clear custom field values: %w", err)
		}
		for _, v := range c.CustomFieldValues {
			if err := insertValue(ctx, tx, c.ID, v.CustomFieldID, v.Value); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update contact: %w", err)
	}
	return nil
}

func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return contact.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return contact.ErrNotFound
	}
	return nil
}

func withDefault(values []domain.CustomFieldValue) []domain.CustomFieldValue {
	if values == nil {
		return []domain.CustomFieldValue{}
	}
	return values
}
