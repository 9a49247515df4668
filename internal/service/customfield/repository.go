package customfield

import (
	"context"

	"github.com/ignite/contact-manager/internal/domain"
)

// Repository defines the data access contract for custom field definitions.
// Implementations must be safe for concurrent use.
type Repository interface {
	// List returns every definition ordered by name.
	List(ctx context.Context) ([]domain.CustomField, error)

	// Get returns a single definition. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.CustomField, error)

	// Create inserts a new definition.
	Create(ctx context.Context, f *domain.CustomField) error

	// Update overwrites name and type. Stored values are not retyped.
	// Returns ErrNotFound if the definition doesn't exist.
	Update(ctx context.Context, f *domain.CustomField) error

	// Delete removes a definition and every value referencing it.
	// Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error
}
