package stuco_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stucoapp/stuco"
)

func TestResetPasswordHandlerReplacesCredential(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	creds := &MockCredentialBackend{}
	mailer := &MockMailer{}

	user := pendingUser("tyler@example.com", "654321")

	handler := stuco.NewResetPasswordHandler(repo, creds, mailer).WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "tyler@example.com").
		Return(user, nil).Once()
	creds.On("SetPassword", mock.Anything, "tyler@example.com", "N3wSecret!").
		Return(nil).Once()
	users.On("Activate", mock.Anything, user.ID).
		Return(nil).Once()
	mailer.On("SendPasswordResetSuccessEmail", mock.Anything, "tyler@example.com",
		stuco.MailContext{"first_name": "Tyler"}).
		Return(nil).Once()

	err := handler.Execute(context.Background(), stuco.ResetPasswordMessage{
		Email:            "Tyler@Example.com",
		ConfirmationCode: "654321",
		Password:         "N3wSecret!",
		ConfirmPassword:  "N3wSecret!",
	})
	require.NoError(t, err)

	users.AssertExpectations(t)
	creds.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestResetPasswordHandlerValidatesBeforeAnyMutation(t *testing.T) {
	tests := []struct {
		name  string
		event stuco.ResetPasswordMessage
		setup func(users *MockUsers)
		check func(t *testing.T, err error)
	}{
		{
			name: "unknown email",
			event: stuco.ResetPasswordMessage{
				Email:            "missing@example.com",
				ConfirmationCode: "654321",
				Password:         "N3wSecret!",
				ConfirmPassword:  "N3wSecret!",
			},
			setup: func(users *MockUsers) {
				users.On("GetByEmail", mock.Anything, mock.Anything).
					Return(nil, repository.NewRecordNotFound()).Once()
			},
			check: func(t *testing.T, err error) {
				require.True(t, stuco.IsCodeMismatch(err))
			},
		},
		{
			name: "wrong code",
			event: stuco.ResetPasswordMessage{
				Email:            "tyler@example.com",
				ConfirmationCode: "000000",
				Password:         "N3wSecret!",
				ConfirmPassword:  "N3wSecret!",
			},
			setup: func(users *MockUsers) {
				users.On("GetByEmail", mock.Anything, mock.Anything).
					Return(pendingUser("tyler@example.com", "654321"), nil).Once()
			},
			check: func(t *testing.T, err error) {
				require.True(t, stuco.IsCodeMismatch(err))
			},
		},
		{
			name: "password confirmation mismatch",
			event: stuco.ResetPasswordMessage{
				Email:            "tyler@example.com",
				ConfirmationCode: "654321",
				Password:         "N3wSecret!",
				ConfirmPassword:  "D1fferent!",
			},
			setup: func(users *MockUsers) {
				users.On("GetByEmail", mock.Anything, mock.Anything).
					Return(pendingUser("tyler@example.com", "654321"), nil).Once()
			},
			check: func(t *testing.T, err error) {
				var richErr *goerrors.Error
				require.True(t, goerrors.As(err, &richErr))
				require.Equal(t, goerrors.CategoryValidation, richErr.Category)
				require.Contains(t, richErr.Message, "Passwords do not match")
			},
		},
		{
			name: "weak password",
			event: stuco.ResetPasswordMessage{
				Email:            "tyler@example.com",
				ConfirmationCode: "654321",
				Password:         "weak",
				ConfirmPassword:  "weak",
			},
			setup: func(users *MockUsers) {
				users.On("GetByEmail", mock.Anything, mock.Anything).
					Return(pendingUser("tyler@example.com", "654321"), nil).Once()
			},
			check: func(t *testing.T, err error) {
				require.True(t, stuco.IsPolicyViolation(err))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockRepositoryManager{}
			users := &MockUsers{}
			creds := &MockCredentialBackend{}
			mailer := &MockMailer{}

			handler := stuco.NewResetPasswordHandler(repo, creds, mailer).WithLogger(testLogger{})

			repo.On("Users").Return(users)
			tc.setup(users)

			err := handler.Execute(context.Background(), tc.event)
			require.Error(t, err)
			tc.check(t, err)

			// no mutation of any kind
			creds.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything)
			users.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
			mailer.AssertNotCalled(t, "SendPasswordResetSuccessEmail", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResetPasswordHandlerPassesThroughBackendPolicyError(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	creds := &MockCredentialBackend{}
	mailer := &MockMailer{}

	user := pendingUser("tyler@example.com", "654321")

	handler := stuco.NewResetPasswordHandler(repo, creds, mailer).WithLogger(testLogger{})

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, mock.Anything).
		Return(user, nil).Once()
	creds.On("SetPassword", mock.Anything, mock.Anything, mock.Anything).
		Return(stuco.NewPolicyViolationError("rejected by pool")).Once()

	err := handler.Execute(context.Background(), stuco.ResetPasswordMessage{
		Email:            "tyler@example.com",
		ConfirmationCode: "654321",
		Password:         "N3wSecret!",
		ConfirmPassword:  "N3wSecret!",
	})
	require.Error(t, err)
	require.True(t, stuco.IsPolicyViolation(err))

	users.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
}
