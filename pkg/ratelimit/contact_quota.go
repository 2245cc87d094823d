package ratelimit

import (
	"context"
	"fmt"
	"time"

	"portfolio-chat-be/pkg/credential"
)

type LeadCounter interface {
	CountByIdentityAndDate(ctx context.Context, identity, date string) (int64, error)
}

// ContactQuota limits contact form submissions per identity and UTC day. It is
// counted from stored leads and never shares state with the chat quota.
type ContactQuota struct {
	leads LeadCounter
	limit int
	now   func() time.Time
}

func NewContactQuota(leads LeadCounter, limit int) *ContactQuota {
	return &ContactQuota{leads: leads, limit: limit, now: time.Now}
}

func (q *ContactQuota) WithClock(now func() time.Time) *ContactQuota {
	q.now = now
	return q
}

func (q *ContactQuota) Today() string {
	return credential.Today(q.now())
}

func (q *ContactQuota) Check(ctx context.Context, identity string) (Decision, error) {
	n, err := q.leads.CountByIdentityAndDate(ctx, identity, q.Today())
	if err != nil {
		return Decision{}, fmt.Errorf("count contact leads: %w", err)
	}
	used := int(n)
	return Decision{
		Allowed: used < q.limit,
		Used:    used,
		Limit:   q.limit,
		ResetAt: credential.NextReset(q.now()),
	}, nil
}
