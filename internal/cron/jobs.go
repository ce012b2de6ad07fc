package cron

import (
	"context"
	"errors"
	"time"
)

type registrationExpirer interface {
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type cartPurger interface {
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type outboxPruner interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// cutoffJob runs fn with now minus maxAge.
type cutoffJob struct {
	name   string
	maxAge time.Duration
	fn     func(ctx context.Context, cutoff time.Time) (int64, error)
	now    func() time.Time
}

func (j *cutoffJob) Name() string { return j.name }

func (j *cutoffJob) Run(ctx context.Context) (int64, error) {
	return j.fn(ctx, j.now().Add(-j.maxAge))
}

func newCutoffJob(name string, maxAge time.Duration, fn func(context.Context, time.Time) (int64, error)) (Job, error) {
	if fn == nil {
		return nil, errors.New(name + ": dependency required")
	}
	if maxAge <= 0 {
		return nil, errors.New(name + ": max age must be positive")
	}
	return &cutoffJob{name: name, maxAge: maxAge, fn: fn, now: time.Now}, nil
}

// NewRegistrationExpiryJob expires waiting and called registrations older than maxAge.
func NewRegistrationExpiryJob(svc registrationExpirer, maxAge time.Duration) (Job, error) {
	if svc == nil {
		return nil, errors.New("registration-expiry: dependency required")
	}
	return newCutoffJob("registration-expiry", maxAge, svc.ExpireBefore)
}

// NewStaleCartJob removes empty carts not touched within maxAge.
func NewStaleCartJob(svc cartPurger, maxAge time.Duration) (Job, error) {
	if svc == nil {
		return nil, errors.New("stale-cart-cleanup: dependency required")
	}
	return newCutoffJob("stale-cart-cleanup", maxAge, svc.PurgeStale)
}

// NewOutboxRetentionJob deletes published outbox rows older than retention.
func NewOutboxRetentionJob(repo outboxPruner, retention time.Duration) (Job, error) {
	if repo == nil {
		return nil, errors.New("outbox-retention: dependency required")
	}
	return newCutoffJob("outbox-retention", retention, repo.DeletePublishedBefore)
}
