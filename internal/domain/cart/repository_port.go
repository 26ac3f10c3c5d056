// internal/domain/cart/repository_port.go
package cart

import "context"

// Repository is a persistence port for Cart.
//
// Storage (Firestore):
// - collection: carts
// - docId: random id (assigned by Create)
// - fields: user_uid, purchased, items, subtotal, createdAt, updatedAt
//
// The "one open cart per user" invariant is not a store constraint; callers
// must serialize open-cart mutations per user (the cart usecase holds a keyed
// lock for this).
//
// Not-found handling policy: readers return (nil, nil) and let the
// application layer map nil to its own not-found error.
type Repository interface {
	// GetOpenByUserUID returns the cart with (user_uid, purchased=false),
	// or (nil, nil) if the user has no open cart.
	GetOpenByUserUID(ctx context.Context, userUID string) (*Cart, error)

	// Create persists a new cart and fills in its ID.
	Create(ctx context.Context, c *Cart) error

	// Update overwrites the full document (docId = c.ID).
	Update(ctx context.Context, c *Cart) error

	// GetHistoryByUserUID returns all purchased carts for the user.
	GetHistoryByUserUID(ctx context.Context, userUID string) ([]Cart, error)

	// ListAll returns every cart. Debug/testing capability only; never expose
	// it outside admin surfaces.
	ListAll(ctx context.Context) ([]Cart, error)
}
