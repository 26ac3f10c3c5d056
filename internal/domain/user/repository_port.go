// internal/domain/user/repository_port.go
package user

import "context"

// Repository is a persistence port for the user directory.
//
// Storage (Firestore):
// - collection: users
// - docId: Firebase Auth uid
//
// Not-found handling policy: readers return (nil, nil).
type Repository interface {
	// GetByUID returns the directory document for uid, or (nil, nil).
	GetByUID(ctx context.Context, uid string) (*User, error)

	// FindAdmin returns any user with role=admin, or (nil, nil) when no
	// administrator exists. Used to locate the purchase-notice target.
	FindAdmin(ctx context.Context) (*User, error)

	// Upsert saves the document (docId = u.UID).
	Upsert(ctx context.Context, u *User) error

	// Delete removes the document.
	Delete(ctx context.Context, uid string) error

	// ListAll returns every directory document. Admin surface only.
	ListAll(ctx context.Context) ([]User, error)
}
