// Package cognito backs the credential lifecycle with an AWS Cognito user
// pool.
//
// Use this package with stuco.CredentialBackend when accounts should be
// mirrored in Cognito while local records keep profile and confirmation
// state.
package cognito
