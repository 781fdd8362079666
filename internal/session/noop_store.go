package session

import (
	"context"
	"time"
)

// NoopStore accepts every token. It is used when no Redis URL is configured,
// in which case logout cannot revoke a token before it expires.
type NoopStore struct{}

func (NoopStore) Save(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	return nil
}

func (NoopStore) Exists(ctx context.Context, tokenID string) (bool, error) {
	return true, nil
}

func (NoopStore) Revoke(ctx context.Context, tokenID string) error {
	return nil
}

func (NoopStore) RevokeUser(ctx context.Context, userID string) error {
	return nil
}

func (NoopStore) Ping(ctx context.Context) error {
	return nil
}

func (NoopStore) Close() error {
	return nil
}
