package cognito

import (
	"fmt"
	"strings"
)

// Config holds the Cognito user pool configuration.
type Config struct {
	// Region is the AWS region hosting the user pool (e.g. "us-east-1").
	Region string

	// UserPoolID is the Cognito user pool identifier.
	UserPoolID string

	// ClientID is the app client ID registered with the pool.
	ClientID string

	// ClientSecret is the app client secret. When set, requests carry a
	// SECRET_HASH computed from it.
	ClientSecret string

	// AccessKeyID and SecretAccessKey are optional static credentials.
	// When empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// Validate checks that the required fields are present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Region) == "" {
		return fmt.Errorf("cognito: region is required")
	}

	if strings.TrimSpace(c.UserPoolID) == "" {
		return fmt.Errorf("cognito: user pool ID is required")
	}

	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("cognito: client ID is required")
	}

	return nil
}
