package stuco_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stucoapp/stuco"
)

type testConfig struct {
	signingKey      string
	contextKey      string
	tokenExpiration int
	issuer          string
	audience        []string
}

func (c testConfig) GetSigningKey() string          { return c.signingKey }
func (c testConfig) GetContextKey() string          { return c.contextKey }
func (c testConfig) GetTokenExpiration() int        { return c.tokenExpiration }
func (c testConfig) GetExtendedTokenDuration() int  { return c.tokenExpiration * 10 }
func (c testConfig) GetIssuer() string              { return c.issuer }
func (c testConfig) GetAudience() []string          { return c.audience }

func newTestConfig() testConfig {
	return testConfig{
		signingKey:      "test-signing-key",
		contextKey:      "jwt",
		tokenExpiration: 72,
		issuer:          "stuco",
		audience:        []string{"stuco"},
	}
}

func activeUser(email string) *stuco.User {
	return &stuco.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Tyler",
		LastName:  "Smith",
		IsActive:  true,
	}
}

func TestLoginMintsSessionToken(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	creds := &MockCredentialBackend{}

	user := activeUser("tyler@example.com")

	auther := stuco.NewAuthenticator(repo, creds, newTestConfig()).
		WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "tyler@example.com").
		Return(user, nil).Once()
	creds.On("Authenticate", mock.Anything, "tyler@example.com", "Sup3rSecret!").
		Return(nil).Once()

	token, err := auther.Login(context.Background(), "Tyler@Example.com", "Sup3rSecret!")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := auther.SessionFromToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), session.GetUserID())
	require.Equal(t, "tyler@example.com", session.GetEmail())
	require.Equal(t, "stuco", session.GetIssuer())
	require.Equal(t, []string{"stuco"}, session.GetAudience())
}

func TestLoginRejectsUnknownEmailLikeBadPassword(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	creds := &MockCredentialBackend{}

	auther := stuco.NewAuthenticator(repo, creds, newTestConfig()).
		WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, mock.Anything).
		Return(nil, repository.NewRecordNotFound()).Once()

	_, missingErr := auther.Login(context.Background(), "missing@example.com", "Sup3rSecret!")

	user := activeUser("tyler@example.com")
	users.On("GetByEmail", mock.Anything, mock.Anything).
		Return(user, nil).Once()
	creds.On("Authenticate", mock.Anything, mock.Anything, mock.Anything).
		Return(stuco.ErrMismatchedHashAndPassword).Once()

	_, badPasswordErr := auther.Login(context.Background(), "tyler@example.com", "WrongPass1!")

	require.Error(t, missingErr)
	require.Error(t, badPasswordErr)
	require.Equal(t, missingErr.Error(), badPasswordErr.Error())
	require.True(t, stuco.IsInvalidCredentials(missingErr))
	require.True(t, stuco.IsInvalidCredentials(badPasswordErr))
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	creds := &MockCredentialBackend{}

	code := "123456"
	pending := &stuco.User{
		ID:               uuid.New(),
		Email:            "tyler@example.com",
		IsActive:         false,
		ConfirmationCode: &code,
	}

	auther := stuco.NewAuthenticator(repo, creds, newTestConfig()).
		WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, mock.Anything).
		Return(pending, nil).Once()

	_, err := auther.Login(context.Background(), "tyler@example.com", "Sup3rSecret!")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	require.Equal(t, stuco.TextCodeInactiveAccount, richErr.TextCode)

	creds.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionFromTokenRejectsExpired(t *testing.T) {
	cfg := newTestConfig()

	repo := &MockRepositoryManager{}
	creds := &MockCredentialBackend{}
	auther := stuco.NewAuthenticator(repo, creds, cfg).WithLogger(testLogger{})

	claims := &stuco.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.issuer,
			Subject:   uuid.NewString(),
			Audience:  cfg.audience,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Email: "tyler@example.com",
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.signingKey))
	require.NoError(t, err)

	_, err = auther.SessionFromToken(expired)
	require.Error(t, err)
	require.True(t, goerrors.Is(err, stuco.ErrTokenExpired))
}

func TestSessionFromTokenRejectsWrongKey(t *testing.T) {
	cfg := newTestConfig()

	auther := stuco.NewAuthenticator(&MockRepositoryManager{}, &MockCredentialBackend{}, cfg).
		WithLogger(testLogger{})

	claims := &stuco.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.issuer,
			Audience:  cfg.audience,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	_, err = auther.SessionFromToken(forged)
	require.Error(t, err)
}
