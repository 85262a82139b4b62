package auth

import (
	"context"
	"testing"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("successful registration", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())
		user, err := svc.Register(ctx, RegisterInput{
			Email:    "  Alice@Example.com ",
			Name:     "Alice",
			Password: "correct horse",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "correct horse", user.Password, "password must be stored hashed")
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())
		_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Name: "A", Password: "password1"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterInput{Email: "A@B.com", Name: "A", Password: "password1"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("input validation", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())
		for _, input := range []RegisterInput{
			{Email: "", Name: "A", Password: "password1"},
			{Email: "a@b.com", Name: "", Password: "password1"},
			{Email: "a@b.com", Name: "A", Password: "short"},
		} {
			_, err := svc.Register(ctx, input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeUserRepo()
	svc := NewService(repo)
	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Name: "A", Password: "password1"})
	require.NoError(t, err)

	t.Run("successful login", func(t *testing.T) {
		user, access, refresh, err := svc.Login(ctx, "a@b.com", "password1")
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", user.Email)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "a@b.com", "password2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "nobody@b.com", "password1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
