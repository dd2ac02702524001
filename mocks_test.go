package stuco_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/stucoapp/stuco"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockRepositoryManager implements stuco.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Users() stuco.Users {
	args := m.Called()
	return args.Get(0).(stuco.Users)
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(context.Context, bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

// MockUsers implements stuco.Users. The embedded repository interface covers
// the methods tests never exercise.
type MockUsers struct {
	mock.Mock
	repository.Repository[*stuco.User]
}

func userResult(args mock.Arguments) (*stuco.User, error) {
	user, _ := args.Get(0).(*stuco.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*stuco.User, error) {
	return userResult(m.Called(ctx, email))
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*stuco.User, error) {
	return userResult(m.Called(ctx, tx, email))
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *stuco.User, criteria ...repository.InsertCriteria) (*stuco.User, error) {
	return userResult(m.Called(ctx, tx, record, criteria))
}

func (m *MockUsers) Activate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) ActivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUsers) SetConfirmationCode(ctx context.Context, id uuid.UUID, code string) error {
	args := m.Called(ctx, id, code)
	return args.Error(0)
}

func (m *MockUsers) SetConfirmationCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string) error {
	args := m.Called(ctx, tx, id, code)
	return args.Error(0)
}

func (m *MockUsers) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *stuco.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *stuco.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *stuco.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *stuco.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

// MockCredentialBackend implements stuco.CredentialBackend
type MockCredentialBackend struct {
	mock.Mock
}

func (m *MockCredentialBackend) SignUp(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialBackend) ConfirmSignUp(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockCredentialBackend) Authenticate(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *MockCredentialBackend) SetPassword(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

// MockMailer implements stuco.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendRegistrationConfirmEmail(ctx context.Context, recipient string, data stuco.MailContext) error {
	args := m.Called(ctx, recipient, data)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, recipient string, data stuco.MailContext) error {
	args := m.Called(ctx, recipient, data)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordResetSuccessEmail(ctx context.Context, recipient string, data stuco.MailContext) error {
	args := m.Called(ctx, recipient, data)
	return args.Error(0)
}
