// internal/application/usecase/user_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	userdom "pharmacy/internal/domain/user"
)

var (
	ErrUserInvalidArgument = errors.New("user_usecase: invalid argument")
	ErrUserNotFound        = errors.New("user_usecase: user not found")
)

// IdentityProvider manages accounts at the identity provider (Firebase Auth).
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}

// UserUsecase keeps the identity provider and the user directory in step:
// every account gets a directory document carrying role and device token.
type UserUsecase struct {
	repo  userdom.Repository
	ident IdentityProvider
	clock Clock
}

func NewUserUsecase(repo userdom.Repository, ident IdentityProvider) *UserUsecase {
	return &UserUsecase{repo: repo, ident: ident, clock: systemClock{}}
}

// NewUserUsecaseWithClock is useful for tests.
func NewUserUsecaseWithClock(repo userdom.Repository, ident IdentityProvider, clock Clock) *UserUsecase {
	uc := NewUserUsecase(repo, ident)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// Create provisions an email/password account and its directory document.
func (uc *UserUsecase) Create(ctx context.Context, email, password, username, deviceToken string) (*userdom.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrUserInvalidArgument
	}
	if uc.ident == nil {
		return nil, errors.New("user_usecase: identity provider not configured")
	}

	uid, err := uc.ident.CreateUser(ctx, email, password, username)
	if err != nil {
		return nil, err
	}

	u, err := userdom.New(uid, email, username, userdom.RoleCustomer, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	u.DeviceToken = strings.TrimSpace(deviceToken)

	if err := uc.repo.Upsert(ctx, u); err != nil {
		// the auth account exists without a directory doc; roll it back so a
		// retry can recreate both
		if delErr := uc.ident.DeleteUser(ctx, uid); delErr != nil {
			log.Printf("[user_usecase] WARN: rollback of auth account %s failed: %v", uid, delErr)
		}
		return nil, err
	}
	return u, nil
}

// Delete removes both the account and the directory document.
func (uc *UserUsecase) Delete(ctx context.Context, uid string) error {
	if !validDocID(uid) {
		return ErrUserInvalidArgument
	}
	if uc.ident == nil {
		return errors.New("user_usecase: identity provider not configured")
	}

	uid = strings.TrimSpace(uid)

	existing, err := uc.repo.GetByUID(ctx, uid)
	if err != nil {
		return err
	}

	if err := uc.ident.DeleteUser(ctx, uid); err != nil {
		if existing == nil {
			return ErrUserNotFound
		}
		return err
	}

	if err := uc.repo.Delete(ctx, uid); err != nil {
		return err
	}
	return nil
}

// RegisterDeviceToken records the FCM token on the caller's directory doc.
func (uc *UserUsecase) RegisterDeviceToken(ctx context.Context, uid, deviceToken string) (*userdom.User, error) {
	if !validDocID(uid) {
		return nil, ErrUserInvalidArgument
	}

	u, err := uc.repo.GetByUID(ctx, strings.TrimSpace(uid))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	u.DeviceToken = strings.TrimSpace(deviceToken)
	if err := uc.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListAll returns every directory document. Admin surface only.
func (uc *UserUsecase) ListAll(ctx context.Context) ([]userdom.User, error) {
	return uc.repo.ListAll(ctx)
}

// GetByUID returns one directory document.
func (uc *UserUsecase) GetByUID(ctx context.Context, uid string) (*userdom.User, error) {
	if !validDocID(uid) {
		return nil, ErrUserInvalidArgument
	}
	u, err := uc.repo.GetByUID(ctx, strings.TrimSpace(uid))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
