// Package mongo provides a MongoDB authsome identity backend. Tokens are
// documents in a single collection with an embedded identity and an
// expiry timestamp.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/authsome"
)

// Compile-time interface check.
var _ authsome.Provider = (*Provider)(nil)

const colTokens = "authsome_tokens"

// tokenDoc is the stored shape of a token and the identity it resolves to.
type tokenDoc struct {
	Token       string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Username    string    `bson:"username"`
	Roles       []string  `bson:"roles,omitempty"`
	Permissions []string  `bson:"permissions,omitempty"`
	ExpiresAt   time.Time `bson:"expires_at"`
}

// Provider resolves tokens against a MongoDB collection.
type Provider struct {
	client *mongod.Client
	tokens *mongod.Collection
}

// New creates a provider over an existing client.
func New(client *mongod.Client, database string) *Provider {
	return &Provider{
		client: client,
		tokens: client.Database(database).Collection(colTokens),
	}
}

// Connect dials MongoDB and creates a provider.
func Connect(uri, database string) (*Provider, error) {
	client, err := mongod.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("authsome mongo: connect: %w", err)
	}
	return New(client, database), nil
}

// Migrate creates the token-expiry index. Mongo's TTL monitor reaps
// expired documents; AuthenticateToken still checks expiry itself so a
// not-yet-reaped token cannot authenticate.
func (p *Provider) Migrate(ctx context.Context) error {
	_, err := p.tokens.Indexes().CreateOne(ctx, mongod.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("authsome mongo: migrate indexes: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (p *Provider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (p *Provider) Close(ctx context.Context) error {
	return p.client.Disconnect(ctx)
}

// IssueToken stores a token for an identity with the given lifetime.
// Intended for seeding and tests.
func (p *Provider) IssueToken(ctx context.Context, token string, identity authsome.Identity, ttl time.Duration) error {
	doc := tokenDoc{
		Token:       token,
		UserID:      identity.ID,
		Username:    identity.DisplayName,
		Roles:       identity.Roles,
		Permissions: identity.Permissions.Values(),
		ExpiresAt:   time.Now().UTC().Add(ttl),
	}
	if _, err := p.tokens.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("authsome mongo: issue token: %w", err)
	}
	return nil
}

// DeleteToken revokes a token.
func (p *Provider) DeleteToken(ctx context.Context, token string) error {
	if _, err := p.tokens.DeleteOne(ctx, bson.D{{Key: "_id", Value: token}}); err != nil {
		return fmt.Errorf("authsome mongo: delete token: %w", err)
	}
	return nil
}

// AuthenticateToken implements authsome.Provider. Driver failures are
// translated to AuthError at this boundary; they never propagate raw.
func (p *Provider) AuthenticateToken(ctx context.Context, token string) (authsome.Identity, error) {
	var doc tokenDoc
	err := p.tokens.FindOne(ctx, bson.D{
		{Key: "_id", Value: token},
		{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: time.Now().UTC()}}},
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongod.ErrNoDocuments) {
			return authsome.Identity{}, authsome.InvalidToken("token expired or unknown")
		}
		return authsome.Identity{}, authsome.BackendUnavailable("token lookup failed", err)
	}

	return authsome.NewIdentity(doc.UserID, doc.Username).
		WithRoles(doc.Roles...).
		WithPermissions(doc.Permissions...), nil
}
