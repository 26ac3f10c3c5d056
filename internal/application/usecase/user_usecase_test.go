package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	userdom "pharmacy/internal/domain/user"
)

func TestUserCreate(t *testing.T) {
	repo := newFakeUserRepo()
	ident := newFakeIdentity()
	uc := NewUserUsecaseWithClock(repo, ident, fixedClock{t: clockNow})

	u, err := uc.Create(context.Background(), "alice@example.com", "s3cret", "alice", "device-1")
	require.NoError(t, err)
	require.Equal(t, "uid-1", u.UID)
	require.Equal(t, userdom.RoleCustomer, u.Role)
	require.Equal(t, "device-1", u.DeviceToken)
	require.Equal(t, clockNow, u.CreatedAt)

	stored, err := repo.GetByUID(context.Background(), u.UID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "alice@example.com", stored.Email)
}

func TestUserCreateRequiresCredentials(t *testing.T) {
	uc := NewUserUsecase(newFakeUserRepo(), newFakeIdentity())

	_, err := uc.Create(context.Background(), "", "s3cret", "alice", "")
	require.ErrorIs(t, err, ErrUserInvalidArgument)

	_, err = uc.Create(context.Background(), "alice@example.com", "", "alice", "")
	require.ErrorIs(t, err, ErrUserInvalidArgument)
}

func TestUserCreateRollsBackAuthOnDirectoryFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failUpsert = true
	ident := newFakeIdentity()
	uc := NewUserUsecase(repo, ident)

	_, err := uc.Create(context.Background(), "alice@example.com", "s3cret", "alice", "")
	require.Error(t, err)
	require.Equal(t, []string{"uid-1"}, ident.deleted)
	require.Empty(t, ident.created)
}

func TestUserDelete(t *testing.T) {
	repo := newFakeUserRepo()
	ident := newFakeIdentity()
	uc := NewUserUsecaseWithClock(repo, ident, fixedClock{t: clockNow})
	ctx := context.Background()

	u, err := uc.Create(ctx, "alice@example.com", "s3cret", "alice", "")
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, u.UID))

	stored, err := repo.GetByUID(ctx, u.UID)
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestUserDeleteUnknown(t *testing.T) {
	uc := NewUserUsecase(newFakeUserRepo(), newFakeIdentity())

	err := uc.Delete(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRegisterDeviceToken(t *testing.T) {
	u, err := userdom.New("u1", "alice@example.com", "alice", userdom.RoleCustomer, clockNow)
	require.NoError(t, err)
	repo := newFakeUserRepo(u)
	uc := NewUserUsecase(repo, newFakeIdentity())
	ctx := context.Background()

	updated, err := uc.RegisterDeviceToken(ctx, "u1", "new-token")
	require.NoError(t, err)
	require.Equal(t, "new-token", updated.DeviceToken)

	stored, err := repo.GetByUID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "new-token", stored.DeviceToken)
}

func TestUserRegisterDeviceTokenUnknownUser(t *testing.T) {
	uc := NewUserUsecase(newFakeUserRepo(), newFakeIdentity())

	_, err := uc.RegisterDeviceToken(context.Background(), "ghost", "token")
	require.ErrorIs(t, err, ErrUserNotFound)
}
