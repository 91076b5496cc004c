package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lankahomes/storefront/internal/core/domain"
)

const opTimeout = 5 * time.Second

// entryDoc is one stored key. ExpiresAt is nil for entries without a TTL.
type entryDoc struct {
	Key       string     `bson:"_id"`
	Value     string     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// live reports whether the document is still valid at now. The TTL monitor
// only sweeps about once a minute, so reads filter expired documents too.
func (d entryDoc) live(now time.Time) bool {
	return d.ExpiresAt == nil || now.Before(*d.ExpiresAt)
}

// Storage keeps session entries in a collection with a TTL index on
// expires_at.
type Storage struct {
	col *mongo.Collection
	now func() time.Time
}

func NewStorage(db *mongo.Database, collection string) *Storage {
	return &Storage{col: db.Collection(collection), now: time.Now}
}

// EnsureIndexes creates the TTL index. Safe to call on every start.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create ttl index: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc entryDoc
	err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrStorageMiss
	}
	if err != nil {
		return "", fmt.Errorf("find entry: %w", err)
	}
	if !doc.live(s.now()) {
		return "", domain.ErrStorageMiss
	}
	return doc.Value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := newEntry(key, value, ttl, s.now())
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}}); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, nil)
}

func newEntry(key, value string, ttl time.Duration, now time.Time) entryDoc {
	doc := entryDoc{Key: key, Value: value}
	if ttl > 0 {
		exp := now.Add(ttl).UTC()
		doc.ExpiresAt = &exp
	}
	return doc
}
