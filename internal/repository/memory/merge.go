package memory

import (
	"context"
	"fmt"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/service/merge"
)

// MergeRepo implements merge.Store in memory. Apply holds the write lock
// for the whole plan and validates it before mutating, so a rejected plan
// changes nothing.
type MergeRepo struct{ s *Store }

func (r *MergeRepo) LoadContacts(_ context.Context, ids []string) ([]domain.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[string]bool, len(ids))
	var out []domain.Contact
	for _, id := range ids {
		c, ok := r.s.contacts[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, r.s.snapshot(c))
	}
	return out, nil
}

func (r *MergeRepo) Apply(ctx context.Context, p *merge.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Empty() {
		return nil
	}
	for _, u := range p.Updates {
		if _, ok := r.s.contacts[u.ContactID]; !ok {
			return fmt.Errorf("update survivor %s: not found", u.ContactID)
		}
	}
	for _, ins := range p.Inserts {
		c, ok := r.s.contacts[ins.ContactID]
		if !ok {
			return fmt.Errorf("insert value for %s: contact not found", ins.ContactID)
		}
		if c.HasField(ins.CustomFieldID) {
			return fmt.Errorf("insert value for %s: field %s already set", ins.ContactID, ins.CustomFieldID)
		}
	}
	for _, id := range p.Deletes {
		if _, ok := r.s.contacts[id]; !ok {
			return fmt.Errorf("delete loser %s: not found", id)
		}
	}

	for _, u := range p.Updates {
		c := r.s.contacts[u.ContactID]
		c.FirstName, c.LastName, c.Phone, c.UpdatedAt = u.FirstName, u.LastName, u.Phone, u.UpdatedAt
	}
	for _, ins := range p.Inserts {
		c := r.s.contacts[ins.ContactID]
		c.CustomFieldValues = append(c.CustomFieldValues, domain.CustomFieldValue{
			CustomFieldID: ins.CustomFieldID,
			Value:         ins.Value,
		})
	}
	for _, id := range p.Deletes {
		delete(r.s.contacts, id)
	}
	return nil
}
