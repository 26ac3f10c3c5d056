// internal/adapters/out/identity/firebase_identity.go
package identity

import (
	"context"
	"fmt"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseIdentity wraps the Firebase Auth admin API for account management.
// Token verification lives in the HTTP middleware; this adapter only covers
// the user-directory side (create/delete accounts).
type FirebaseIdentity struct {
	Auth *fbauth.Client
}

func NewFirebaseIdentity(auth *fbauth.Client) *FirebaseIdentity {
	return &FirebaseIdentity{Auth: auth}
}

// CreateUser provisions an email/password account and returns its uid.
func (f *FirebaseIdentity) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	if f == nil || f.Auth == nil {
		return "", fmt.Errorf("firebase_identity: auth client is nil")
	}

	params := (&fbauth.UserToCreate{}).
		Email(strings.TrimSpace(email)).
		Password(password)
	if dn := strings.TrimSpace(displayName); dn != "" {
		params = params.DisplayName(dn)
	}

	rec, err := f.Auth.CreateUser(ctx, params)
	if err != nil {
		return "", fmt.Errorf("firebase_identity: create user: %w", err)
	}
	return rec.UID, nil
}

// DeleteUser removes the account for uid.
func (f *FirebaseIdentity) DeleteUser(ctx context.Context, uid string) error {
	if f == nil || f.Auth == nil {
		return fmt.Errorf("firebase_identity: auth client is nil")
	}
	if strings.TrimSpace(uid) == "" {
		return fmt.Errorf("firebase_identity: uid is empty")
	}
	if err := f.Auth.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("firebase_identity: delete user: %w", err)
	}
	return nil
}
