package redis

import (
	"context"
	"time"
)

// AcquireLock takes the named lock for ttl on behalf of owner.
func (c *Client) AcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	return c.SetNX(ctx, c.LockKey(name), owner, ttl)
}

// ReleaseLock drops the lock only while owner still holds it. A lock that
// expired or passed to another owner is left alone.
func (c *Client) ReleaseLock(ctx context.Context, name, owner string) error {
	key := c.LockKey(name)
	current, err := c.Get(ctx, key)
	switch {
	case IsMiss(err):
		return nil
	case err != nil:
		return err
	case current != owner:
		return nil
	}
	return c.Del(ctx, key)
}
