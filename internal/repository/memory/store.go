// Package memory provides in-process implementations of the contact,
// custom field and merge repositories. It backs the "memory" storage driver
// and the service and API tests.
//
// Filters use strings.Contains, so name and email filters are
// case-sensitive, matching PostgreSQL LIKE.
package memory

import (
	"sync"

	"github.com/ignite/contact-manager/internal/domain"
)

// Store holds every table. Repositories obtained from it share state.
type Store struct {
	mu       sync.RWMutex
	contacts map[string]*domain.Contact
	fields   map[string]domain.CustomField
}

// New creates an empty store.
func New() *Store {
	return &Store{
		contacts: make(map[string]*domain.Contact),
		fields:   make(map[string]domain.CustomField),
	}
}

// Contacts returns the contact repository view.
func (s *Store) Contacts() *ContactRepo { return &ContactRepo{s: s} }

// CustomFields returns the custom field repository view.
func (s *Store) CustomFields() *CustomFieldRepo { return &CustomFieldRepo{s: s} }

// Merge returns the merge store view.
func (s *Store) Merge() *MergeRepo { return &MergeRepo{s: s} }

// snapshot copies c with field names resolved. Values whose definition has
// been removed are dropped. Caller holds at least a read lock.
func (s *Store) snapshot(c *domain.Contact) domain.Contact {
	out := *c
	if c.Phone != nil {
		p := *c.Phone
		out.Phone = &p
	}
	out.CustomFieldValues = make([]domain.CustomFieldValue, 0, len(c.CustomFieldValues))
	for _, v := range c.CustomFieldValues {
		f, ok := s.fields[v.CustomFieldID]
		if !ok {
			continue
		}
		v.CustomFieldName = f.Name
		out.CustomFieldValues = append(out.CustomFieldValues, v)
	}
	return out
}

func (s *Store) emailTaken(email, exceptID string) bool {
	for id, c := range s.contacts {
		if id != exceptID && domain.NormalizeEmail(c.Email) == email {
			return true
		}
	}
	return false
}

func copyValues(in []domain.CustomFieldValue) []domain.CustomFieldValue {
	out := make([]domain.CustomFieldValue, len(in))
	for i, v := range in {
		v.CustomFieldName = ""
		out[i] = v
	}
	return out
}
