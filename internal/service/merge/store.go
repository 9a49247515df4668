package merge

import (
	"context"
	"time"

	"github.com/ignite/contact-manager/internal/domain"
)

// Store is the persistence contract the merge engine needs.
type Store interface {
	// LoadContacts returns the contacts among ids that exist, each with its
	// full custom field value set and field names resolved. Unknown ids are
	// skipped without error. Order is unspecified.
	LoadContacts(ctx context.Context, ids []string) ([]domain.Contact, error)

	// Apply commits every change in the plan or none of them.
	Apply(ctx context.Context, plan *Plan) error
}

// Plan is the complete set of writes for one merge request.
type Plan struct {
	Updates []SurvivorUpdate
	Inserts []ValueInsert
	Deletes []string
}

// Empty reports whether the plan has nothing to write.
func (p *Plan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Inserts) == 0 && len(p.Deletes) == 0
}

// SurvivorUpdate carries the reconciled scalar columns of a survivor.
type SurvivorUpdate struct {
	ContactID string
	FirstName string
	LastName  string
	Phone     *string
	UpdatedAt time.Time
}

// ValueInsert copies a loser's custom field value onto a survivor.
type ValueInsert struct {
	ContactID     string
	CustomFieldID string
	Value         domain.FieldValue
}
