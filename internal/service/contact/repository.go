package contact

import (
	"context"

	"github.com/ignite/contact-manager/internal/domain"
)

// Repository defines the data access contract for contacts.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a contact with its custom field values (names resolved).
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Contact, error)

	// List returns one page of contacts matching the filter and the total
	// number of matches.
	List(ctx context.Context, filter ListFilter) ([]domain.Contact, int, error)

	// EmailExists reports whether a contact with the normalized email exists.
	EmailExists(ctx context.Context, email string) (bool, error)

	// Create inserts the contact and its values. Returns ErrEmailExists if
	// the store's uniqueness constraint rejects the email.
	Create(ctx context.Context, c *domain.Contact) error

	// Update writes names, phone and updated_at. When replaceValues is true
	// the stored value set is replaced by c.CustomFieldValues.
	// Returns ErrNotFound if the contact doesn't exist.
	Update(ctx context.Context, c *domain.Contact, replaceValues bool) error

	// Delete removes a contact and its values. Returns ErrNotFound if it
	// doesn't exist.
	Delete(ctx context.Context, id string) error
}

// FieldLookup resolves custom field definitions by id. Unknown ids are
// absent from the returned map.
type FieldLookup interface {
	LookupFields(ctx context.Context, ids []string) (map[string]domain.CustomField, error)
}

// SortField names a sortable contact column.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByFirstName SortField = "firstName"
	SortByLastName  SortField = "lastName"
	SortByEmail     SortField = "email"
)

// ListFilter controls filtering, ordering and pagination for contact lists.
// Name and email filters are substring matches with the store's collation.
type ListFilter struct {
	FirstName string
	LastName  string
	Email     string
	SortBy    SortField
	Desc      bool
	Limit     int
	Offset    int
}
