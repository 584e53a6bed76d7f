package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/kurokira/storefront-backend/pkg/config"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

var (
	errAPIKeyRequired = errors.New("sendgrid api key is required")
	errSenderRequired = errors.New("sendgrid sender address is required")
	errLoggerRequired = errors.New("email logger is required")
)

// Client sends transactional storefront mail through SendGrid.
type Client struct {
	sg        *sendgrid.Client
	fromName  string
	fromEmail string
	logger    *logger.Logger
}

// NewClient validates the SendGrid credentials and returns a mail client.
func NewClient(cfg config.EmailConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.SendgridAPIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	fromEmail := strings.TrimSpace(cfg.FromAddress)
	if fromEmail == "" {
		return nil, errSenderRequired
	}
	return &Client{
		sg:        sendgrid.NewSendClient(apiKey),
		fromName:  strings.TrimSpace(cfg.FromName),
		fromEmail: fromEmail,
		logger:    logg,
	}, nil
}

// Send delivers one HTML email to the recipient.
func (c *Client) Send(ctx context.Context, toName, toEmail, subject, htmlBody string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email is required")
	}

	from := mail.NewEmail(c.fromName, c.fromEmail)
	to := mail.NewEmail(strings.TrimSpace(toName), toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlBody, htmlBody)

	resp, err := c.sg.SendWithContext(ctx, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sendgrid returned status %d", resp.StatusCode))
	}
	c.logger.Info(c.logger.WithFields(ctx, map[string]any{"to": toEmail, "subject": subject}), "email accepted")
	return nil
}
