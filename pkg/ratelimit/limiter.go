// Package ratelimit enforces the per-day message and contact quotas.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"portfolio-chat-be/pkg/credential"

	"github.com/google/uuid"
)

// Policy decides when a chat message consumes quota.
type Policy string

const (
	// PolicyUpfront charges before the pipeline runs. A failed generation still counts.
	PolicyUpfront Policy = "upfront"
	// PolicyOnSuccess charges only once the turn completed without an upstream error.
	PolicyOnSuccess Policy = "on_success"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyUpfront, "":
		return PolicyUpfront, nil
	case PolicyOnSuccess:
		return PolicyOnSuccess, nil
	default:
		return "", fmt.Errorf("ratelimit: unknown charge policy %q", s)
	}
}

type UsageStore interface {
	TotalUsage(ctx context.Context, identity, scope, date string) (int, error)
	IncrementUsage(ctx context.Context, conversationId uuid.UUID) (int, error)
}

type Decision struct {
	Allowed bool
	Used    int
	Limit   int
	ResetAt time.Time
}

func (d Decision) Remaining() int {
	if d.Used >= d.Limit {
		return 0
	}
	return d.Limit - d.Used
}

type Limiter struct {
	store  UsageStore
	limit  int
	policy Policy
	now    func() time.Time
}

func NewLimiter(store UsageStore, limit int, policy Policy) *Limiter {
	return &Limiter{store: store, limit: limit, policy: policy, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) Policy() Policy { return l.policy }

func (l *Limiter) Limit() int { return l.limit }

// Today is the UTC day the quota is currently counted against.
func (l *Limiter) Today() string {
	return credential.Today(l.now())
}

// Check reads the usage of (identity, scope, date) without modifying it. A
// credential only counts when it was issued for the same key; the store is
// authoritative otherwise.
func (l *Limiter) Check(ctx context.Context, identity, scope, date string, claims *credential.Claims) (Decision, error) {
	used, err := l.store.TotalUsage(ctx, identity, scope, date)
	if err != nil {
		return Decision{}, fmt.Errorf("read usage: %w", err)
	}
	if claims.Matches(identity, scope, date) && claims.MessagesUsed > used {
		used = claims.MessagesUsed
	}

	return Decision{
		Allowed: used < l.limit,
		Used:    used,
		Limit:   l.limit,
		ResetAt: credential.NextReset(l.now()),
	}, nil
}

// Charge consumes one message on the conversation and returns its new counter.
func (l *Limiter) Charge(ctx context.Context, conversationId uuid.UUID) (int, error) {
	n, err := l.store.IncrementUsage(ctx, conversationId)
	if err != nil {
		return 0, fmt.Errorf("charge usage: %w", err)
	}
	return n, nil
}
