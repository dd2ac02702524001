package stuco

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the local account record. It exists whether credentials are stored
// locally or delegated to the identity provider; the two are linked by email.
type User struct {
	bun.BaseModel    `bun:"table:users,alias:usr"`
	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email            string     `bun:"email,notnull,unique" json:"email,omitempty"`
	FirstName        string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	MiddleName       string     `bun:"middle_name" json:"middle_name,omitempty"`
	LastName         string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	PasswordHash     string     `bun:"password_hash" json:"password_hash,omitempty"`
	IsActive         bool       `bun:"is_active" json:"is_active"`
	ConfirmationCode *string    `bun:"confirmation_code,nullzero" json:"confirmation_code,omitempty"`
	IsStaff          bool       `bun:"is_staff" json:"is_staff"`
	IsSuperuser      bool       `bun:"is_superuser" json:"is_superuser"`
	LoginAttempts    int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt   *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt       *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedBy        string     `bun:"created_by" json:"created_by,omitempty"`
	UpdatedBy        string     `bun:"last_updated_by" json:"last_updated_by,omitempty"`
	CreatedAt        *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time `bun:"last_updated_at,nullzero,default:current_timestamp" json:"last_updated_at,omitempty"`
}

// FullName joins the non-empty name parts.
func (u *User) FullName() string {
	parts := []string{}
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}

// PendingCode returns the stored confirmation code, or "" when none is pending.
// A missing code never matches any supplied code.
func (u *User) PendingCode() string {
	if u.ConfirmationCode == nil {
		return ""
	}
	return *u.ConfirmationCode
}

// CodeMatches compares the supplied code against the stored one. Exact string
// match; an empty stored or supplied code is always a mismatch.
func (u *User) CodeMatches(code string) bool {
	stored := u.PendingCode()
	if stored == "" || code == "" {
		return false
	}
	return stored == code
}

// NormalizeEmail lowercases and trims an email address. Emails are stored
// lowercase and compared lowercase everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
