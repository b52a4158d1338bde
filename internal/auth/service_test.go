package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func newTestService(repo Repository) Service {
	return NewService(repo, "test-secret", time.Hour, zap.NewNop())
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	var created *User
	repo.On("GetUserByEmail", mock.Anything, "clerk@bosquecounty.us").Return(nil, nil)
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*User) }).
		Return(nil)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Clerk@BosqueCounty.us",
		Password: "correct-horse-battery",
		FullName: "County Clerk",
		Role:     RoleCounty,
	})

	require.NoError(t, err)
	assert.Equal(t, "clerk@bosquecounty.us", user.Email)
	require.NotNil(t, created)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(created.PasswordHash), []byte("correct-horse-battery")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("GetUserByEmail", mock.Anything, "clerk@bosquecounty.us").
		Return(&User{Email: "clerk@bosquecounty.us"}, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "clerk@bosquecounty.us",
		Password: "correct-horse-battery",
		FullName: "County Clerk",
		Role:     RoleCounty,
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func storedUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:           uuid.New(),
		Email:        "clerk@bosquecounty.us",
		PasswordHash: string(hash),
		FullName:     "County Clerk",
		Role:         RoleCounty,
		IsActive:     true,
	}
}

func TestLoginRoundTrip(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	user := storedUser(t, "correct-horse-battery")

	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, RoleCounty, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	user := storedUser(t, "correct-horse-battery")

	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	user := storedUser(t, "correct-horse-battery")
	user.IsActive = false

	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	repo := new(MockRepository)
	user := storedUser(t, "correct-horse-battery")
	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	issuer := NewService(repo, "other-secret", time.Hour, zap.NewNop())
	resp, err := issuer.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	verifier := newTestService(repo)
	_, err = verifier.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
