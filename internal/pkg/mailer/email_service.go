package mailer

import (
	"context"
	"fmt"
	"html"
	"time"

	"portfolio-chat-be/internal/entity"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	// SendContact delivers a lead to the owners with the sender in Cc and
	// returns the number of attempts made.
	SendContact(ctx context.Context, lead *entity.ContactLead) (int, error)
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

type emailService struct {
	sender     Sender
	from       string
	senderName string
	owners     []string
	retry      RetryPolicy
}

func NewEmailService(host string, port int, username, password, senderName string, owners []string, retry RetryPolicy) IEmailService {
	return NewEmailServiceWithSender(gomail.NewDialer(host, port, username, password), username, senderName, owners, retry)
}

func NewEmailServiceWithSender(sender Sender, from, senderName string, owners []string, retry RetryPolicy) IEmailService {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	return &emailService{
		sender:     sender,
		from:       from,
		senderName: senderName,
		owners:     owners,
		retry:      retry,
	}
}

func (s *emailService) buildMessage(lead *entity.ContactLead) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.senderName)
	m.SetHeader("To", s.owners...)
	m.SetHeader("Cc", lead.Email)
	m.SetHeader("Reply-To", lead.Email)
	m.SetHeader("Subject", "Portfolio Contact: "+lead.Subject)

	m.SetBody("text/plain", fmt.Sprintf(
		"New contact from the portfolio\n\nName: %s\nEmail: %s\nCountry: %s\nSubject: %s\n\nMessage:\n%s\n",
		lead.Name, lead.Email, lead.Country, lead.Subject, lead.Message,
	))
	m.AddAlternative("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>New contact from the portfolio</h2>
			<p><strong>Name:</strong> %s</p>
			<p><strong>Email:</strong> %s</p>
			<p><strong>Country:</strong> %s</p>
			<p><strong>Subject:</strong> %s</p>
			<p><strong>Message:</strong></p>
			<p>%s</p>
		</div>
	`,
		html.EscapeString(lead.Name),
		html.EscapeString(lead.Email),
		html.EscapeString(lead.Country),
		html.EscapeString(lead.Subject),
		html.EscapeString(lead.Message),
	))
	return m
}

// SendContact retries with exponential backoff (initial, 2x, 4x...) until the
// attempts are exhausted or ctx is done.
func (s *emailService) SendContact(ctx context.Context, lead *entity.ContactLead) (int, error) {
	if len(s.owners) == 0 {
		return 0, fmt.Errorf("mailer: no owner addresses configured")
	}
	m := s.buildMessage(lead)

	backoff := s.retry.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if lastErr = s.sender.DialAndSend(m); lastErr == nil {
			return attempt, nil
		}
		if attempt == s.retry.MaxAttempts {
			return attempt, fmt.Errorf("send contact email after %d attempts: %w", attempt, lastErr)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, fmt.Errorf("send contact email: %w (last error: %v)", ctx.Err(), lastErr)
		case <-timer.C:
		}
		backoff *= 2
	}
	return s.retry.MaxAttempts, lastErr
}
