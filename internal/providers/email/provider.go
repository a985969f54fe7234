package email

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("smtp not configured")

type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
	// SendTemplate renders templates/<name>.html with data and sends it.
	SendTemplate(ctx context.Context, to []string, subject string, templateName string, data any) error
}
