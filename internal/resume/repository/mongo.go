package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/resumefire/backend/go-services/internal/resume"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores one Mongo document per profile, keyed by user identity.
// Updates are optimistic: the replace only matches the revision that was
// read, and a lost race re-reads and re-applies the mutation.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// usernames are unique across profiles (public lookup key)
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, p *resume.Profile) error {
	cp := p.Clone()
	cp.Revision = 1
	_, err := m.col.InsertOne(ctx, cp)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert profile: %w", err)
	}
	n, cerr := m.col.CountDocuments(ctx, bson.M{"_id": p.UserID})
	if cerr != nil {
		return fmt.Errorf("insert profile: %w", cerr)
	}
	if n > 0 {
		return resume.ErrProfileExists
	}
	return resume.ErrUsernameTaken
}

func (m *MongoRepo) findOne(ctx context.Context, filter bson.M) (*resume.Profile, error) {
	var p resume.Profile
	if err := m.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, resume.ErrProfileNotFound
		}
		return nil, err
	}
	if p.History == nil {
		p.History = []resume.Document{}
	}
	return &p, nil
}

func (m *MongoRepo) Get(ctx context.Context, userID string) (*resume.Profile, error) {
	return m.findOne(ctx, bson.M{"_id": userID})
}

func (m *MongoRepo) GetByUsername(ctx context.Context, username string) (*resume.Profile, error) {
	return m.findOne(ctx, bson.M{"username": resume.NormalizeUsername(username)})
}

func (m *MongoRepo) Update(ctx context.Context, userID string, fn MutateFunc) (*resume.Profile, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p, err := m.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		rev := p.Revision
		if err := fn(p); err != nil {
			return nil, err
		}
		p.Revision = rev + 1
		res, err := m.col.ReplaceOne(ctx, bson.M{"_id": userID, "revision": rev}, p)
		if err != nil {
			return nil, fmt.Errorf("replace profile: %w", err)
		}
		if res.MatchedCount == 1 {
			return p, nil
		}
	}
	return nil, ErrConflict
}
