package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/geocoder89/usershub/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func createUser(t *testing.T, repo *memory.UsersRepo, name, email string) user.User {
	t.Helper()

	u, err := repo.Create(context.Background(), user.CreateUserRequest{Name: strPtr(name), Email: strPtr(email)})
	require.NoError(t, err)

	return u
}

func TestCreate(t *testing.T) {
	repo := memory.NewUsersRepo()

	u := createUser(t, repo, "Ada", "Ada@Example.com")

	assert.Len(t, u.ID, 24)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestCreate_DuplicateEmailIgnoresCase(t *testing.T) {
	repo := memory.NewUsersRepo()
	createUser(t, repo, "Ada", "ada@example.com")

	_, err := repo.Create(context.Background(), user.CreateUserRequest{Name: strPtr("Other"), Email: strPtr("ADA@EXAMPLE.COM")})

	assert.ErrorIs(t, err, user.ErrDuplicateEmail)

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCreate_Validation(t *testing.T) {
	repo := memory.NewUsersRepo()

	_, err := repo.Create(context.Background(), user.CreateUserRequest{Age: intPtr(130)})

	assert.Equal(t, user.KindValidation, user.KindOf(err))

	total, _ := repo.Count(context.Background())
	assert.Zero(t, total)
}

func TestGetByID(t *testing.T) {
	repo := memory.NewUsersRepo()

	_, err := repo.GetByID(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, user.ErrInvalidID)

	_, err = repo.GetByID(context.Background(), "65a1f0c2e4b0a1b2c3d4e5f6")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestList_NewestFirstWithPaging(t *testing.T) {
	repo := memory.NewUsersRepo().WithClock(tickingClock())

	var ids []string
	for i := 0; i < 12; i++ {
		ids = append(ids, createUser(t, repo, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i)).ID)
	}

	page, err := repo.List(context.Background(), user.ListFilter{Limit: 5, Offset: 5})
	require.NoError(t, err)
	require.Len(t, page, 5)

	// newest is ids[11]; offset 5 starts at ids[6]
	for i, u := range page {
		assert.Equal(t, ids[6-i], u.ID)
	}

	last, err := repo.List(context.Background(), user.ListFilter{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Len(t, last, 2)

	beyond, err := repo.List(context.Background(), user.ListFilter{Limit: 5, Offset: 20})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestList_SameTimestampNewestInsertFirst(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewUsersRepo().WithClock(func() time.Time { return fixed })

	first := createUser(t, repo, "First", "first@example.com")
	second := createUser(t, repo, "Second", "second@example.com")

	list, err := repo.List(context.Background(), user.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestUpdate(t *testing.T) {
	repo := memory.NewUsersRepo().WithClock(tickingClock())
	u := createUser(t, repo, "Ada", "ada@example.com")

	got, err := repo.Update(context.Background(), u.ID, user.UpdateUserRequest{Age: intPtr(36), Email: strPtr("ADA@new.io")})
	require.NoError(t, err)

	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@new.io", got.Email)
	require.NotNil(t, got.Age)
	assert.Equal(t, 36, *got.Age)
	assert.Equal(t, u.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(u.UpdatedAt))

	// the old email is free again
	createUser(t, repo, "Someone", "ada@example.com")
}

func TestUpdate_Errors(t *testing.T) {
	repo := memory.NewUsersRepo()
	a := createUser(t, repo, "Ada", "ada@example.com")
	b := createUser(t, repo, "Bob", "bob@example.com")

	_, err := repo.Update(context.Background(), "xyz", user.UpdateUserRequest{})
	assert.ErrorIs(t, err, user.ErrInvalidID)

	_, err = repo.Update(context.Background(), "65a1f0c2e4b0a1b2c3d4e5f6", user.UpdateUserRequest{Name: strPtr("X")})
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = repo.Update(context.Background(), b.ID, user.UpdateUserRequest{Age: intPtr(-1)})
	assert.Equal(t, user.KindValidation, user.KindOf(err))

	_, err = repo.Update(context.Background(), b.ID, user.UpdateUserRequest{Email: strPtr("Ada@Example.com"), Name: strPtr("Changed")})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)

	unchanged, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, unchanged)

	// keeping your own email is not a collision
	_, err = repo.Update(context.Background(), a.ID, user.UpdateUserRequest{Email: strPtr("ada@example.com")})
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	repo := memory.NewUsersRepo()
	u := createUser(t, repo, "Ada", "ada@example.com")

	require.NoError(t, repo.Delete(context.Background(), u.ID))

	_, err := repo.GetByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(context.Background(), u.ID), user.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), "bogus"), user.ErrInvalidID)

	// email can be reused after delete
	createUser(t, repo, "Ada again", "ada@example.com")
}

func TestConcurrentCreatesKeepEmailUnique(t *testing.T) {
	repo := memory.NewUsersRepo()

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(context.Background(), user.CreateUserRequest{Name: strPtr("Same"), Email: strPtr("same@example.com")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, user.ErrDuplicateEmail)
	}

	assert.Equal(t, 1, ok)
}
