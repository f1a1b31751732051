// Package blacklist remembers revoked bearer tokens until they expire.
package blacklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Store interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
