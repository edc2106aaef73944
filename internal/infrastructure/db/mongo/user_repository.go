package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/destru/catalog-api/internal/core/domain"
)

const userCollection = "users"

// MongoUserRepository persists credentials. Each user carries a numeric id
// allocated from the counters collection in addition to the document _id;
// the numeric id is what the opaque id codec encodes.
type MongoUserRepository struct {
	coll     *mongo.Collection
	counters *counters
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(userCollection), counters: newCounters(db)}
}

type mongoUser struct {
	OID          primitive.ObjectID `bson:"_id,omitempty"`
	ID           int64              `bson:"id"`
	Name         string             `bson:"name"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    int64              `bson:"created_at"`
}

func (r *MongoUserRepository) Create(ctx context.Context, name, passwordHash string) (*domain.User, error) {
	id, err := r.counters.next(ctx, userCollection)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := mongoUser{
		ID:           id,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrNameExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &domain.User{ID: id, Name: name, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (r *MongoUserRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &domain.User{
		ID:           mu.ID,
		Name:         mu.Name,
		PasswordHash: mu.PasswordHash,
		CreatedAt:    unixToTime(mu.CreatedAt),
	}, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
