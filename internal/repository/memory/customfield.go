package memory

import (
	"context"
	"sort"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/service/customfield"
)

// CustomFieldRepo implements customfield.Repository and
// contact.FieldLookup in memory.
type CustomFieldRepo struct{ s *Store }

func (r *CustomFieldRepo) List(_ context.Context) ([]domain.CustomField, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.CustomField, 0, len(r.s.fields))
	for _, f := range r.s.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CustomFieldRepo) Get(_ context.Context, id string) (*domain.CustomField, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.fields[id]
	if !ok {
		return nil, customfield.ErrNotFound
	}
	return &f, nil
}

func (r *CustomFieldRepo) Create(_ context.Context, f *domain.CustomField) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.fields[f.ID] = *f
	return nil
}

func (r *CustomFieldRepo) Update(_ context.Context, f *domain.CustomField) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.fields[f.ID]
	if !ok {
		return customfield.ErrNotFound
	}
	cur.Name = f.Name
	cur.FieldType = f.FieldType
	r.s.fields[f.ID] = cur
	return nil
}

// Delete removes the definition and cascades to every contact's value.
func (r *CustomFieldRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fields[id]; !ok {
		return customfield.ErrNotFound
	}
	delete(r.s.fields, id)
	for _, c := range r.s.contacts {
		kept := c.CustomFieldValues[:0]
		for _, v := range c.CustomFieldValues {
			if v.CustomFieldID != id {
				kept = append(kept, v)
			}
		}
		c.CustomFieldValues = kept
	}
	return nil
}

// LookupFields implements contact.FieldLookup.
func (r *CustomFieldRepo) LookupFields(_ context.Context, ids []string) (map[string]domain.CustomField, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]domain.CustomField, len(ids))
	for _, id := range ids {
		if f, ok := r.s.fields[id]; ok {
			out[id] = f
		}
	}
	return out, nil
}
