package repository

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Backends carries the connections a backend may need. Only the one named
// by Open's backend argument has to be set.
type Backends struct {
	Mongo       *mongo.Database
	Collection  string
	Redis       *redis.Client
	RedisPrefix string
	BadgerPath  string
}

// Open returns the repository for backend (memory, mongo, redis or badger)
// and a function releasing what Open itself acquired.
func Open(backend string, b Backends) (Repository, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case "", "memory":
		return NewMemoryRepo(), noop, nil
	case "mongo":
		if b.Mongo == nil {
			return nil, nil, fmt.Errorf("mongo backend selected but MongoDB is not connected")
		}
		col := b.Collection
		if col == "" {
			col = "resumes"
		}
		return NewMongoRepo(b.Mongo.Collection(col)), noop, nil
	case "redis":
		if b.Redis == nil {
			return nil, nil, fmt.Errorf("redis backend selected but Redis is not connected")
		}
		return NewRedisRepo(b.Redis, b.RedisPrefix), noop, nil
	case "badger":
		db, err := OpenBadger(b.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return NewBadgerRepo(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown resume store %q", backend)
	}
}
