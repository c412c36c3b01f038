// Package redis provides a Redis authsome identity backend using
// go-redis. Each token is a key holding a JSON identity record; token
// expiry rides on the key's TTL, so revocation is a DEL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/authsome"
)

// Compile-time interface check.
var _ authsome.Provider = (*Provider)(nil)

// keyPrefix namespaces token keys in a shared Redis instance.
const keyPrefix = "authsome:token:"

// identityRecord is the stored shape of an identity.
type identityRecord struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Provider resolves tokens against Redis.
type Provider struct {
	client *redis.Client
}

// New creates a provider over an existing client.
func New(client *redis.Client) *Provider {
	return &Provider{client: client}
}

// Connect dials Redis and creates a provider.
func Connect(addr, password string, db int) *Provider {
	return &Provider{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Ping verifies the Redis connection.
func (p *Provider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (p *Provider) Close() error {
	return p.client.Close()
}

// SetToken stores an identity under a token with the given lifetime.
// A ttl of zero stores the token without expiry.
func (p *Provider) SetToken(ctx context.Context, token string, identity authsome.Identity, ttl time.Duration) error {
	rec := identityRecord{
		ID:          identity.ID,
		Username:    identity.DisplayName,
		Roles:       identity.Roles,
		Permissions: identity.Permissions.Values(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("authsome redis: encode identity: %w", err)
	}
	if err := p.client.Set(ctx, keyPrefix+token, data, ttl).Err(); err != nil {
		return fmt.Errorf("authsome redis: set token: %w", err)
	}
	return nil
}

// DeleteToken revokes a token.
func (p *Provider) DeleteToken(ctx context.Context, token string) error {
	if err := p.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("authsome redis: delete token: %w", err)
	}
	return nil
}

// AuthenticateToken implements authsome.Provider. Redis failures are
// translated to AuthError at this boundary; they never propagate raw.
func (p *Provider) AuthenticateToken(ctx context.Context, token string) (authsome.Identity, error) {
	data, err := p.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return authsome.Identity{}, authsome.InvalidToken("token expired or unknown")
		}
		return authsome.Identity{}, authsome.BackendUnavailable("token lookup failed", err)
	}

	var rec identityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt record means the referenced identity is unusable,
		// not that Redis is down.
		return authsome.Identity{}, authsome.OtherError("corrupt identity record")
	}

	return authsome.NewIdentity(rec.ID, rec.Username).
		WithRoles(rec.Roles...).
		WithPermissions(rec.Permissions...), nil
}
