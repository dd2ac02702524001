package cognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stucoapp/stuco"
)

// CognitoAPI is the subset of the Cognito identity provider client used by
// this package. It exists so tests can substitute the AWS client.
type CognitoAPI interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	AdminConfirmSignUp(ctx context.Context, params *cip.AdminConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.AdminConfirmSignUpOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, params *cip.AdminUpdateUserAttributesInput, optFns ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error)
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	ForgotPassword(ctx context.Context, params *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ChangePassword(ctx context.Context, params *cip.ChangePasswordInput, optFns ...func(*cip.Options)) (*cip.ChangePasswordOutput, error)
	AdminSetUserPassword(ctx context.Context, params *cip.AdminSetUserPasswordInput, optFns ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error)
	AdminGetUser(ctx context.Context, params *cip.AdminGetUserInput, optFns ...func(*cip.Options)) (*cip.AdminGetUserOutput, error)
}

// Client wraps the Cognito identity provider API with pool scoped helpers.
type Client struct {
	api    CognitoAPI
	config Config
}

// NewClient builds a Client from the pool configuration, resolving AWS
// credentials through the default chain unless static keys are provided.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    cip.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

// NewClientWithAPI builds a Client around an existing API implementation.
func NewClientWithAPI(api CognitoAPI, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{api: api, config: cfg}, nil
}

// UsernameFromEmail maps an email address onto a Cognito safe username.
// Usernames may not contain "@" so the address is rewritten with stable
// substitutions.
func UsernameFromEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	email = strings.ReplaceAll(email, "@", "_at_")
	email = strings.ReplaceAll(email, ".", "dot")
	return email
}

// secretHash computes base64(HMAC-SHA256(client_secret, email + client_id)).
func (c *Client) secretHash(email string) string {
	if c.config.ClientSecret == "" {
		return ""
	}

	mac := hmac.New(sha256.New, []byte(c.config.ClientSecret))
	mac.Write([]byte(email + c.config.ClientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignUp registers the email and password with the user pool.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	input := &cip.SignUpInput{
		ClientId: aws.String(c.config.ClientID),
		Username: aws.String(UsernameFromEmail(email)),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	}

	if hash := c.secretHash(email); hash != "" {
		input.SecretHash = aws.String(hash)
	}

	_, err := c.api.SignUp(ctx, input)
	return mapError(err)
}

// ConfirmSignUp confirms the pool account and marks the email attribute as
// verified.
func (c *Client) ConfirmSignUp(ctx context.Context, email string) error {
	username := UsernameFromEmail(email)

	_, err := c.api.AdminConfirmSignUp(ctx, &cip.AdminConfirmSignUpInput{
		UserPoolId: aws.String(c.config.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return mapError(err)
	}

	_, err = c.api.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId: aws.String(c.config.UserPoolID),
		Username:   aws.String(username),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email_verified"), Value: aws.String("true")},
		},
	})
	return mapError(err)
}

// Authenticate runs the USER_PASSWORD_AUTH flow against the pool.
func (c *Client) Authenticate(ctx context.Context, email, password string) error {
	_, err := c.initiateAuth(ctx, email, password)
	return err
}

func (c *Client) initiateAuth(ctx context.Context, email, password string) (*cip.InitiateAuthOutput, error) {
	params := map[string]string{
		"USERNAME": UsernameFromEmail(email),
		"PASSWORD": password,
	}

	if hash := c.secretHash(email); hash != "" {
		params["SECRET_HASH"] = hash
	}

	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId:       aws.String(c.config.ClientID),
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: params,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// ForgotPassword asks the pool to start its own recovery flow. The account
// lifecycle handlers manage recovery codes locally, so this is exposed for
// operators driving the pool directly.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	input := &cip.ForgotPasswordInput{
		ClientId: aws.String(c.config.ClientID),
		Username: aws.String(UsernameFromEmail(email)),
	}

	if hash := c.secretHash(email); hash != "" {
		input.SecretHash = aws.String(hash)
	}

	_, err := c.api.ForgotPassword(ctx, input)
	return mapError(err)
}

// ChangePassword authenticates with the current password and swaps it for a
// new one using the access token from the auth result.
func (c *Client) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	out, err := c.initiateAuth(ctx, email, oldPassword)
	if err != nil {
		return err
	}

	if out.AuthenticationResult == nil || out.AuthenticationResult.AccessToken == nil {
		return stuco.NewInvalidCredentialsError()
	}

	_, err = c.api.ChangePassword(ctx, &cip.ChangePasswordInput{
		AccessToken:      out.AuthenticationResult.AccessToken,
		PreviousPassword: aws.String(oldPassword),
		ProposedPassword: aws.String(newPassword),
	})
	return mapError(err)
}

// SetPassword overwrites the pool password as a permanent credential.
func (c *Client) SetPassword(ctx context.Context, email, password string) error {
	_, err := c.api.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(c.config.UserPoolID),
		Username:   aws.String(UsernameFromEmail(email)),
		Password:   aws.String(password),
		Permanent:  true,
	})
	return mapError(err)
}

// GetUser fetches the pool record, mostly useful for diagnostics.
func (c *Client) GetUser(ctx context.Context, email string) (*cip.AdminGetUserOutput, error) {
	out, err := c.api.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(c.config.UserPoolID),
		Username:   aws.String(UsernameFromEmail(email)),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
