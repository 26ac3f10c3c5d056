// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidUser = errors.New("user: invalid")
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is the directory document kept alongside the Firebase Auth account.
//   - docId = Firebase Auth uid
//   - DeviceToken is the FCM registration token used for push notices
//     (admins receive a purchase notice through it).
type User struct {
	// UID is the Firebase Auth uid (= Firestore docId).
	UID string `json:"uid" firestore:"uid"`

	Email       string `json:"email" firestore:"email"`
	Username    string `json:"username" firestore:"username"`
	Role        string `json:"role" firestore:"role"`
	DeviceToken string `json:"device_token" firestore:"device_token"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// New creates a directory document. Role defaults to customer.
func New(uid, email, username, role string, now time.Time) (*User, error) {
	u := &User{
		UID:       strings.TrimSpace(uid),
		Email:     strings.TrimSpace(email),
		Username:  strings.TrimSpace(username),
		Role:      strings.TrimSpace(role),
		CreatedAt: now,
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	if err := u.validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) validate() error {
	if u == nil {
		return ErrInvalidUser
	}
	if u.UID == "" {
		return ErrInvalidUser
	}
	if u.Role != RoleAdmin && u.Role != RoleCustomer {
		return ErrInvalidUser
	}
	if u.CreatedAt.IsZero() {
		return ErrInvalidUser
	}
	return nil
}
