package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dupfinder/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendEndpoint = "/v3/mail/send"

// ErrNotConfigured is returned when no API key or recipient is set
var ErrNotConfigured = errors.New("sendgrid notifier not configured")

// Notifier tells the triage inbox about tickets created from negative feedback
type Notifier struct {
	apiKey      string
	triageEmail string
	fromEmail   string
	host        string
}

// NewNotifier creates a SendGrid notifier. An empty host targets the public API.
func NewNotifier(apiKey, triageEmail, host string) *Notifier {
	return &Notifier{
		apiKey:      apiKey,
		triageEmail: triageEmail,
		fromEmail:   "noreply@dupfinder.local",
		host:        host,
	}
}

// Enabled reports whether notifications can be sent
func (n *Notifier) Enabled() bool {
	return n.apiKey != "" && n.triageEmail != ""
}

// NotifyNewTicket emails the triage inbox a digest of a new ticket
func (n *Notifier) NotifyNewTicket(ctx context.Context, ticket models.Ticket) error {
	if !n.Enabled() {
		return ErrNotConfigured
	}

	from := mail.NewEmail("Duplicate Finder", n.fromEmail)
	to := mail.NewEmail("Triage", n.triageEmail)
	subject := fmt.Sprintf("New ticket #%d: %s", ticket.ID, truncate(ticket.Title, 80))
	body := ticketDigest(ticket)

	message := mail.NewSingleEmail(from, subject, to, body, "")

	request := sendgrid.GetRequest(n.apiKey, sendEndpoint, n.host)
	request.Method = "POST"
	client := &sendgrid.Client{Request: request}

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func ticketDigest(ticket models.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A search found no matching ticket, so a new one was created.\n\n")
	fmt.Fprintf(&b, "Ticket ID: %d\n", ticket.ID)
	fmt.Fprintf(&b, "Created: %s\n\n", ticket.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Title:\n%s\n\n", ticket.Title)
	fmt.Fprintf(&b, "Summary:\n%s\n\n", ticket.Summary)
	fmt.Fprintf(&b, "Description:\n%s\n", ticket.CleanBody)
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
