package mailer

import (
	"embed"
)

//go:embed templates
var templatesFS embed.FS

// GetTemplatesFS returns the embedded email templates
func GetTemplatesFS() embed.FS {
	return templatesFS
}
