// Package postgres provides a PostgreSQL authsome identity backend using
// pgx. Tokens are rows in authsome_tokens with an expiry; the referenced
// user carries role and direct-permission rows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xraph/authsome"
)

// Compile-time interface check.
var _ authsome.Provider = (*Provider)(nil)

// Provider resolves tokens against a PostgreSQL database.
type Provider struct {
	pool *pgxpool.Pool
}

// New creates a provider over an existing connection pool.
func New(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool}
}

// Connect dials the database and creates a provider.
func Connect(ctx context.Context, dsn string) (*Provider, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("authsome postgres: connect: %w", err)
	}
	return &Provider{pool: pool}, nil
}

// Migrate creates the backend schema if it does not exist.
func (p *Provider) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS authsome_users (
    id          TEXT PRIMARY KEY,
    username    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS authsome_user_roles (
    user_id     TEXT NOT NULL REFERENCES authsome_users(id) ON DELETE CASCADE,
    role        TEXT NOT NULL,
    PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS authsome_user_permissions (
    user_id     TEXT NOT NULL REFERENCES authsome_users(id) ON DELETE CASCADE,
    permission  TEXT NOT NULL,
    PRIMARY KEY (user_id, permission)
);

CREATE TABLE IF NOT EXISTS authsome_tokens (
    token       TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES authsome_users(id) ON DELETE CASCADE,
    expires_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_authsome_tokens_user ON authsome_tokens (user_id);
`)
	if err != nil {
		return fmt.Errorf("authsome postgres: migrate: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (p *Provider) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *Provider) Close() {
	p.pool.Close()
}

// IssueToken stores a token for a user with the given lifetime. Intended
// for seeding and tests; token issuance is otherwise outside this
// package's contract.
func (p *Provider) IssueToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO authsome_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, time.Now().UTC().Add(ttl))
	if err != nil {
		return fmt.Errorf("authsome postgres: issue token: %w", err)
	}
	return nil
}

// AuthenticateToken implements authsome.Provider. Database failures are
// translated to AuthError at this boundary; they never propagate raw.
func (p *Provider) AuthenticateToken(ctx context.Context, token string) (authsome.Identity, error) {
	var userID string
	err := p.pool.QueryRow(ctx,
		`SELECT user_id FROM authsome_tokens WHERE token = $1 AND expires_at > now()`,
		token).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsome.Identity{}, authsome.InvalidToken("token expired or unknown")
		}
		return authsome.Identity{}, authsome.BackendUnavailable("token lookup failed", err)
	}

	var id, username string
	err = p.pool.QueryRow(ctx,
		`SELECT id, username FROM authsome_users WHERE id = $1`,
		userID).Scan(&id, &username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsome.Identity{}, authsome.UserNotFound()
		}
		return authsome.Identity{}, authsome.BackendUnavailable("user lookup failed", err)
	}

	roles, err := p.queryStrings(ctx,
		`SELECT role FROM authsome_user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return authsome.Identity{}, authsome.BackendUnavailable("role lookup failed", err)
	}

	perms, err := p.queryStrings(ctx,
		`SELECT permission FROM authsome_user_permissions WHERE user_id = $1`, userID)
	if err != nil {
		return authsome.Identity{}, authsome.BackendUnavailable("permission lookup failed", err)
	}

	return authsome.NewIdentity(id, username).
		WithRoles(roles...).
		WithPermissions(perms...), nil
}

func (p *Provider) queryStrings(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := p.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
