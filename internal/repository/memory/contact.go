package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/service/contact"
)

// ContactRepo implements contact.Repository in memory.
type ContactRepo struct{ s *Store }

func (r *ContactRepo) Get(_ context.Context, id string) (*domain.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contacts[id]
	if !ok {
		return nil, contact.ErrNotFound
	}
	out := r.s.snapshot(c)
	return &out, nil
}

func (r *ContactRepo) List(_ context.Context, f contact.ListFilter) ([]domain.Contact, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []domain.Contact
	for _, c := range r.s.contacts {
		if f.FirstName != "" && !strings.Contains(c.FirstName, f.FirstName) {
			continue
		}
		if f.LastName != "" && !strings.Contains(c.LastName, f.LastName) {
			continue
		}
		if f.Email != "" && !strings.Contains(c.Email, f.Email) {
			continue
		}
		matched = append(matched, r.s.snapshot(c))
	}

	less := lessFunc(f.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := &matched[i], &matched[j]
		if f.Desc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID < b.ID
	})

	total := len(matched)
	if f.Offset < 0 || f.Offset >= total {
		return []domain.Contact{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total || f.Limit <= 0 {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func lessFunc(by contact.SortField) func(a, b *domain.Contact) bool {
	switch by {
	case contact.SortByFirstName:
		return func(a, b *domain.Contact) bool { return a.FirstName < b.FirstName }
	case contact.SortByLastName:
		return func(a, b *domain.Contact) bool { return a.LastName < b.LastName }
	case contact.SortByEmail:
		return func(a, b *domain.Contact) bool { return a.Email < b.Email }
	case contact.SortByUpdatedAt:
		return func(a, b *domain.Contact) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	return func(a, b *domain.Contact) bool { return a.CreatedAt.Before(b.CreatedAt) }
}

func (r *ContactRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.emailTaken(domain.NormalizeEmail(email), ""), nil
}

func (r *ContactRepo) Create(_ context.Context, c *domain.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailTaken(domain.NormalizeEmail(c.Email), "") {
		return contact.ErrEmailExists
	}
	cp := *c
	cp.CustomFieldValues = copyValues(c.CustomFieldValues)
	r.s.contacts[cp.ID] = &cp
	return nil
}

func (r *ContactRepo) Update(_ context.Context, c *domain.Contact, replaceValues bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.contacts[c.ID]
	if !ok {
		return contact.ErrNotFound
	}
	cur.FirstName = c.FirstName
	cur.LastName = c.LastName
	cur.Phone = c.Phone
	cur.UpdatedAt = c.UpdatedAt
	if replaceValues {
		cur.CustomFieldValues = copyValues(c.CustomFieldValues)
	}
	return nil
}

func (r *ContactRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[id]; !ok {
		return contact.ErrNotFound
	}
	delete(r.s.contacts, id)
	return nil
}

// Insert stores c as-is, bypassing the email uniqueness check. It seeds
// duplicate rows such as those left by imports that predate the constraint.
func (r *ContactRepo) Insert(c domain.Contact) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.CustomFieldValues = copyValues(c.CustomFieldValues)
	r.s.contacts[c.ID] = &c
}
