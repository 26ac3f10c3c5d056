// internal/adapters/out/firestore/user_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	userdom "pharmacy/internal/domain/user"
)

// UserRepositoryFS implements user.Repository using Firestore.
//
// Collection design:
// - collection: users
// - docId: Firebase Auth uid
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

// GetByUID returns (nil, nil) if not found.
func (r *UserRepositoryFS) GetByUID(ctx context.Context, uid string) (*userdom.User, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("user_repository_fs: firestore client is nil")
	}

	id := strings.TrimSpace(uid)
	if id == "" {
		return nil, errors.New("user_repository_fs: uid is empty")
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}

	u := doc.toDomain()
	u.UID = id
	return u, nil
}

// FindAdmin returns any admin user, or (nil, nil) when none exists.
func (r *UserRepositoryFS) FindAdmin(ctx context.Context) (*userdom.User, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("user_repository_fs: firestore client is nil")
	}

	it := r.col().Where("role", "==", userdom.RoleAdmin).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	u := doc.toDomain()
	u.UID = snap.Ref.ID
	return u, nil
}

// Upsert saves the doc by docId=u.UID.
func (r *UserRepositoryFS) Upsert(ctx context.Context, u *userdom.User) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}
	if u == nil {
		return errors.New("user_repository_fs: user is nil")
	}

	uid := strings.TrimSpace(u.UID)
	if uid == "" {
		return errors.New("user_repository_fs: Upsert requires user.UID as docId")
	}

	_, err := r.col().Doc(uid).Set(ctx, userDocFromDomain(u))
	return err
}

func (r *UserRepositoryFS) Delete(ctx context.Context, uid string) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}

	id := strings.TrimSpace(uid)
	if id == "" {
		return errors.New("user_repository_fs: uid is empty")
	}

	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

// ListAll returns every directory document.
func (r *UserRepositoryFS) ListAll(ctx context.Context) ([]userdom.User, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("user_repository_fs: firestore client is nil")
	}

	it := r.col().Documents(ctx)
	defer it.Stop()

	out := []userdom.User{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var doc userDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		u := doc.toDomain()
		u.UID = snap.Ref.ID
		out = append(out, *u)
	}
	return out, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type userDoc struct {
	Email       string    `firestore:"email"`
	Username    string    `firestore:"username"`
	Role        string    `firestore:"role"`
	DeviceToken string    `firestore:"device_token"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func userDocFromDomain(u *userdom.User) userDoc {
	return userDoc{
		Email:       u.Email,
		Username:    u.Username,
		Role:        u.Role,
		DeviceToken: u.DeviceToken,
		CreatedAt:   u.CreatedAt,
	}
}

func (d userDoc) toDomain() *userdom.User {
	return &userdom.User{
		// UID is filled by the caller from the docId.
		Email:       d.Email,
		Username:    d.Username,
		Role:        d.Role,
		DeviceToken: d.DeviceToken,
		CreatedAt:   d.CreatedAt,
	}
}
