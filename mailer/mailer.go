package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/gofiber/template/django/v3"

	"github.com/stucoapp/stuco"
)

const (
	// DefaultSender is the from header used when none is configured.
	DefaultSender = "Dont Reply <do_not_reply@gmail.com>"

	// LogoContentID is the inline attachment ID templates reference as
	// cid:stuco-logo.
	LogoContentID = "<stuco-logo>"

	registrationTemplate         = "app_registration_template"
	passwordResetTemplate        = "password_reset_template"
	passwordResetSuccessTemplate = "password_reset_success_template"

	registrationSubject         = "StuCo App Registration Email Confirmation"
	passwordResetSubject        = "StuCo App Password Reset"
	passwordResetSuccessSubject = "StuCo App Password Has Been Reset"
)

// SESAPI is the slice of the SES v2 client this package uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig configures the SES client.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Sender delivers the account lifecycle emails. Implements stuco.Mailer.
type Sender struct {
	api      SESAPI
	engine   *django.Engine
	sender   string
	replyTo  []string
	logoPath string
	logger   stuco.Logger
}

// NewSender builds a Sender around an SES API client.
func NewSender(api SESAPI, opts ...SenderOption) (*Sender, error) {
	root, err := fs.Sub(GetTemplatesFS(), "templates")
	if err != nil {
		return nil, fmt.Errorf("mailer: unable to scope templates: %w", err)
	}

	engine := django.NewFileSystem(http.FS(root), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("mailer: unable to load templates: %w", err)
	}

	s := &Sender{
		api:    api,
		engine: engine,
		sender: DefaultSender,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// NewSESSender builds a Sender with a real SES client.
func NewSESSender(ctx context.Context, cfg SESConfig, opts ...SenderOption) (*Sender, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return NewSender(sesv2.NewFromConfig(awsCfg), opts...)
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSender overrides the from header.
func WithSender(sender string) SenderOption {
	return func(s *Sender) {
		if sender != "" {
			s.sender = sender
		}
	}
}

// WithReplyTo sets reply-to addresses.
func WithReplyTo(addrs ...string) SenderOption {
	return func(s *Sender) {
		s.replyTo = addrs
	}
}

// WithLogo attaches the image at path inline on every message.
func WithLogo(path string) SenderOption {
	return func(s *Sender) {
		s.logoPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(logger stuco.Logger) SenderOption {
	return func(s *Sender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// SendRegistrationConfirmEmail implements stuco.Mailer.
func (s *Sender) SendRegistrationConfirmEmail(ctx context.Context, recipient string, data stuco.MailContext) error {
	return s.send(ctx, recipient, registrationSubject, registrationTemplate, data)
}

// SendPasswordResetEmail implements stuco.Mailer.
func (s *Sender) SendPasswordResetEmail(ctx context.Context, recipient string, data stuco.MailContext) error {
	return s.send(ctx, recipient, passwordResetSubject, passwordResetTemplate, data)
}

// SendPasswordResetSuccessEmail implements stuco.Mailer.
func (s *Sender) SendPasswordResetSuccessEmail(ctx context.Context, recipient string, data stuco.MailContext) error {
	return s.send(ctx, recipient, passwordResetSuccessSubject, passwordResetSuccessTemplate, data)
}

func (s *Sender) send(ctx context.Context, recipient, subject, template string, data stuco.MailContext) error {
	var html bytes.Buffer
	if err := s.engine.Render(&html, template, map[string]any(data)); err != nil {
		return fmt.Errorf("mailer: unable to render %s: %w", template, err)
	}

	raw, err := s.buildRaw(recipient, subject, subject, html.String())
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("sending email", "to", recipient, "subject", subject)
	}

	_, err = s.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		ReplyToAddresses: s.replyTo,
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("email delivery failed", "to", recipient, "error", err)
		}
		return err
	}

	return nil
}

// buildRaw assembles a multipart/related message carrying a text and HTML
// alternative plus the optional inline logo.
func (s *Sender) buildRaw(recipient, subject, text, html string) ([]byte, error) {
	var buf bytes.Buffer
	related := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", s.sender)
	fmt.Fprintf(&buf, "To: %s\r\n", recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/related; boundary=%q\r\n\r\n", related.Boundary())

	var alt bytes.Buffer
	altWriter := multipart.NewWriter(&alt)

	textPart, err := altWriter.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(textPart, "%s\r\n", text)

	htmlPart, err := altWriter.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(htmlPart, "%s\r\n", html)

	if err := altWriter.Close(); err != nil {
		return nil, err
	}

	body, err := related.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", altWriter.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	if _, err := body.Write(alt.Bytes()); err != nil {
		return nil, err
	}

	if s.logoPath != "" {
		if err := s.attachLogo(related); err != nil {
			return nil, err
		}
	}

	if err := related.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *Sender) attachLogo(w *multipart.Writer) error {
	img, err := os.ReadFile(s.logoPath)
	if err != nil {
		return fmt.Errorf("mailer: unable to read logo %s: %w", s.logoPath, err)
	}

	name := filepath.Base(s.logoPath)
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/octet-stream"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-ID":                {LogoContentID},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", name)},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(img)
	// wrap base64 at 76 chars per RFC 2045
	for len(encoded) > 76 {
		fmt.Fprintf(part, "%s\r\n", encoded[:76])
		encoded = encoded[76:]
	}
	fmt.Fprintf(part, "%s\r\n", encoded)

	return nil
}
