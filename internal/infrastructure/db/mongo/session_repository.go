package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

const sessionCollection = "sessions"

// MongoSessionRepository persists sessions so they survive gateway restarts.
// Documents are keyed by the SHA-256 digest of the bearer credential, giving
// a fixed-length deterministic _id.
type MongoSessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{coll: db.Collection(sessionCollection)}
}

type sessionDoc struct {
	TokenHash  string `bson:"_id"`
	Name       string `bson:"name"`
	Email      string `bson:"email"`
	Role       string `bson:"role"`
	Credential string `bson:"credential"`
	ExpiresAt  int64  `bson:"expires_at"`
	CreatedAt  int64  `bson:"created_at"`
}

func (r *MongoSessionRepository) Save(ctx context.Context, tokenHash string, s *domain.Session) error {
	doc := sessionDoc{
		TokenHash:  tokenHash,
		Name:       s.Identity.Name,
		Email:      s.Identity.Email,
		Role:       string(s.Role),
		Credential: s.Credential,
		CreatedAt:  time.Now().UTC().Unix(),
	}
	if !s.ExpiresAt.IsZero() {
		doc.ExpiresAt = s.ExpiresAt.Unix()
	}

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": tokenHash}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *MongoSessionRepository) Delete(ctx context.Context, tokenHash string) error {
	// Deleting an absent session is not an error: logout is idempotent.
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": tokenHash}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *MongoSessionRepository) LoadAll(ctx context.Context) (map[string]*domain.Session, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"expires_at": 0},
		bson.M{"expires_at": bson.M{"$gt": time.Now().UTC().Unix()}},
	}}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	defer cur.Close(ctx)

	out := make(map[string]*domain.Session)
	for cur.Next(ctx) {
		var doc sessionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		s := &domain.Session{
			Identity:   domain.Identity{Name: doc.Name, Email: doc.Email},
			Role:       domain.Role(doc.Role),
			Credential: doc.Credential,
		}
		if doc.ExpiresAt != 0 {
			s.ExpiresAt = time.Unix(doc.ExpiresAt, 0).UTC()
		}
		if !s.Complete() {
			// A partial document is never resurrected as a session.
			continue
		}
		out[doc.TokenHash] = s
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}
