// internal/domain/drug/repository_port.go
package drug

import "context"

// Filter narrows catalog listings.
// Name matches as a case-sensitive prefix (Firestore range query),
// Form and ActiveIngredient match array membership.
type Filter struct {
	Name             string
	Form             string
	ActiveIngredient string
}

// Repository is a persistence port for Drug.
//
// Storage (Firestore):
// - collection: drugs
// - docId: auto-generated
// - fields: drug_name, forms, form_types (denormalized), strength,
//   active_ingredients, status, price
//
// Not-found handling policy: readers return (nil, nil) and let the
// application layer map nil to its own not-found error.
type Repository interface {
	// GetByID returns the drug for docId, or (nil, nil) if absent.
	GetByID(ctx context.Context, id string) (*Drug, error)

	// GetByName returns the drug with the exact drug_name, or (nil, nil).
	GetByName(ctx context.Context, name string) (*Drug, error)

	// List returns a window of drugs matching the filter.
	List(ctx context.Context, f Filter, offset, limit int) ([]Drug, error)

	// Count returns how many drugs match the filter.
	Count(ctx context.Context, f Filter) (int, error)

	// Create persists a new drug and fills in its ID.
	Create(ctx context.Context, d *Drug) error

	// Update overwrites the full document (docId = d.ID).
	Update(ctx context.Context, d *Drug) error

	// Delete removes the document.
	Delete(ctx context.Context, id string) error

	// FormTypes returns the distinct form type names across the catalog.
	FormTypes(ctx context.Context) ([]string, error)
}
