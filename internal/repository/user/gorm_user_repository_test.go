package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-bazaar-chat/internal/database"
	"github.com/iyunix/go-bazaar-chat/internal/domain"
)

func newRepo(t *testing.T) UserRepository {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	return NewGormUserRepository(db)
}

func TestCreate_AndFind(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{Username: "alice", Password: "hash", Role: domain.RoleUser})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)
}

func TestCreate_DuplicateUsername(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "alice", Password: "hash"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", Password: "other"})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestCreate_Validation(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Create(context.Background(), &domain.User{Username: "al", Password: "hash"})
	require.Error(t, err)
	_, err = repo.Create(context.Background(), &domain.User{Username: "alice"})
	require.Error(t, err)
}

func TestFindByUsername_NotFound(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.FindByUsername(context.Background(), " ")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindAll_SortedByUsername(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	for _, name := range []string{"carol", "alice", "bob"} {
		_, err := repo.Create(ctx, &domain.User{Username: name, Password: "hash"})
		require.NoError(t, err)
	}

	users, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, "alice", users[0].Username)
	require.Equal(t, "carol", users[2].Username)
}
