package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kechei-store/warehouse-api/internal/shared"
)

const tokenKeyPrefix = "warehouse:token:"

// TokenStore keeps opaque bearer tokens in Redis. Each token maps to the
// principal it was issued for and expires after the configured TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue creates a fresh token for the principal.
func (ts *TokenStore) Issue(ctx context.Context, principal shared.Principal) (string, error) {
	payload, err := json.Marshal(principal)
	if err != nil {
		return "", err
	}
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := ts.client.Set(ctx, tokenKeyPrefix+token, payload, ts.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// TTL returns the configured token lifetime.
func (ts *TokenStore) TTL() time.Duration {
	return ts.ttl
}

// Resolve returns the principal a token was issued for and slides its expiry.
func (ts *TokenStore) Resolve(ctx context.Context, token string) (*shared.Principal, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}
	payload, err := ts.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	var principal shared.Principal
	if err := json.Unmarshal(payload, &principal); err != nil {
		return nil, err
	}
	_ = ts.client.Expire(ctx, tokenKeyPrefix+token, ts.ttl).Err()
	return &principal, nil
}

// Revoke deletes a token.
func (ts *TokenStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := ts.client.Del(ctx, tokenKeyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// tokenFingerprint returns the value stored in the session mirror in place
// of the raw token.
func tokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
