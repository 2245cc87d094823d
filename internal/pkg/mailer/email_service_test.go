package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-chat-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type flakySender struct {
	failures int
	calls    int
	last     *gomail.Message
}

func (f *flakySender) DialAndSend(m ...*gomail.Message) error {
	f.calls++
	f.last = m[0]
	if f.calls <= f.failures {
		return errors.New("421 try again later")
	}
	return nil
}

var lead = &entity.ContactLead{
	Name:    "Ada",
	Email:   "ada@example.com",
	Country: "UK",
	Subject: "Project <idea>",
	Message: "Let's build something.",
}

func TestSendContactRetriesUntilSuccess(t *testing.T) {
	sender := &flakySender{failures: 2}
	svc := NewEmailServiceWithSender(sender, "bot@example.com", "Portfolio", []string{"j@example.com", "p@example.com"}, RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Millisecond})

	attempts, err := svc.SendContact(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, sender.calls)

	assert.Equal(t, []string{"j@example.com", "p@example.com"}, sender.last.GetHeader("To"))
	assert.Equal(t, []string{"ada@example.com"}, sender.last.GetHeader("Cc"))
	assert.Equal(t, []string{"Portfolio Contact: Project <idea>"}, sender.last.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = sender.last.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Project &lt;idea&gt;")
}

func TestSendContactGivesUpAfterMaxAttempts(t *testing.T) {
	sender := &flakySender{failures: 100}
	svc := NewEmailServiceWithSender(sender, "bot@example.com", "Portfolio", []string{"j@example.com"}, RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Millisecond})

	attempts, err := svc.SendContact(context.Background(), lead)
	require.Error(t, err)
	assert.Equal(t, 5, attempts)
	assert.Equal(t, 5, sender.calls)
}

func TestSendContactStopsWhenCancelled(t *testing.T) {
	sender := &flakySender{failures: 100}
	svc := NewEmailServiceWithSender(sender, "bot@example.com", "Portfolio", []string{"j@example.com"}, RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts, err := svc.SendContact(ctx, lead)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestSendContactWithoutOwners(t *testing.T) {
	svc := NewEmailServiceWithSender(&flakySender{}, "bot@example.com", "Portfolio", nil, RetryPolicy{MaxAttempts: 5})
	_, err := svc.SendContact(context.Background(), lead)
	assert.Error(t, err)
}
