package stuco_test

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stucoapp/stuco"
)

func TestLocalBackendSignUpReturnsVerifiableHash(t *testing.T) {
	backend := stuco.NewLocalHashBackend(&MockRepositoryManager{}).
		WithLogger(testLogger{})

	hash, err := backend.SignUp(context.Background(), "tyler@example.com", "Sup3rSecret!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "Sup3rSecret!", hash)

	require.NoError(t, stuco.ComparePasswordAndHash("Sup3rSecret!", hash))
	require.Error(t, stuco.ComparePasswordAndHash("WrongPass1!", hash))
}

func TestLocalBackendSignUpEnforcesPolicy(t *testing.T) {
	backend := stuco.NewLocalHashBackend(&MockRepositoryManager{}).
		WithLogger(testLogger{})

	_, err := backend.SignUp(context.Background(), "tyler@example.com", "weak")
	require.Error(t, err)
	require.True(t, stuco.IsPolicyViolation(err))
}

func TestLocalBackendAuthenticateTracksFailedAttempts(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	hash, err := stuco.HashPassword("Sup3rSecret!")
	require.NoError(t, err)

	user := &stuco.User{
		ID:           uuid.New(),
		Email:        "tyler@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}

	backend := stuco.NewLocalHashBackend(repo).WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "tyler@example.com").
		Return(user, nil).Once()
	users.On("TrackAttemptedLogin", mock.Anything, user).
		Return(nil).Once()

	err = backend.Authenticate(context.Background(), "tyler@example.com", "WrongPass1!")
	require.Error(t, err)
	require.True(t, goerrors.Is(err, stuco.ErrMismatchedHashAndPassword))

	users.AssertExpectations(t)
}

func TestLocalBackendAuthenticateEnforcesCoolDown(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	now := time.Now()
	user := &stuco.User{
		ID:             uuid.New(),
		Email:          "tyler@example.com",
		LoginAttempts:  stuco.MaxLoginAttempts + 1,
		LoginAttemptAt: &now,
	}

	backend := stuco.NewLocalHashBackend(repo).WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, mock.Anything).
		Return(user, nil).Once()

	err := backend.Authenticate(context.Background(), "tyler@example.com", "Sup3rSecret!")
	require.Error(t, err)
	require.True(t, goerrors.Is(err, stuco.ErrTooManyLoginAttempts))
}

func TestLocalBackendAuthenticateResetsExpiredCoolDown(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	hash, err := stuco.HashPassword("Sup3rSecret!")
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	user := &stuco.User{
		ID:             uuid.New(),
		Email:          "tyler@example.com",
		PasswordHash:   hash,
		LoginAttempts:  stuco.MaxLoginAttempts + 1,
		LoginAttemptAt: &stale,
	}

	backend := stuco.NewLocalHashBackend(repo).WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, mock.Anything).
		Return(user, nil).Once()
	users.On("TrackSuccessfulLogin", mock.Anything, user).
		Return(nil).Once()

	err = backend.Authenticate(context.Background(), "tyler@example.com", "Sup3rSecret!")
	require.NoError(t, err)

	users.AssertExpectations(t)
}

func TestLocalBackendSetPasswordStoresNewHash(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	user := &stuco.User{ID: uuid.New(), Email: "tyler@example.com"}

	backend := stuco.NewLocalHashBackend(repo).WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "tyler@example.com").
		Return(user, nil).Once()
	users.On("ResetPassword", mock.Anything, user.ID,
		mock.MatchedBy(func(hash string) bool {
			return stuco.ComparePasswordAndHash("N3wSecret!", hash) == nil
		})).Return(nil).Once()

	err := backend.SetPassword(context.Background(), "tyler@example.com", "N3wSecret!")
	require.NoError(t, err)

	users.AssertExpectations(t)
}

func TestLocalBackendSetPasswordUnknownEmail(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	backend := stuco.NewLocalHashBackend(repo).WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, mock.Anything).
		Return(nil, repository.NewRecordNotFound()).Once()

	err := backend.SetPassword(context.Background(), "missing@example.com", "N3wSecret!")
	require.Error(t, err)
	require.True(t, stuco.IsCredentialNotFound(err))
}
