// Package stuco implements the account lifecycle for the StuCo web app:
// self-service registration, email confirmation, forgot/reset password, and
// login. Credentials live either in the local users table (bcrypt) or in an
// external identity provider (Amazon Cognito), selected once at configuration
// time through the CredentialBackend abstraction.
package stuco
