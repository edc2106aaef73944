package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/destru/catalog-api/internal/core/domain"
	"github.com/destru/catalog-api/internal/core/ports"
)

const sessionCollection = "user_tokens"

// MongoSessionStore persists session tokens. InTransaction runs its callback
// inside a multi-document transaction, which requires the deployment to be a
// replica set (standalone mongod does not support transactions).
type MongoSessionStore struct {
	client   *mongo.Client
	coll     *mongo.Collection
	counters *counters
}

func NewSessionStore(client *mongo.Client, db *mongo.Database) *MongoSessionStore {
	return &MongoSessionStore{
		client:   client,
		coll:     db.Collection(sessionCollection),
		counters: newCounters(db),
	}
}

type mongoSessionToken struct {
	Seq       int64     `bson:"seq"`
	UserID    int64     `bson:"user_id"`
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (s *MongoSessionStore) InTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.SessionTx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &sessionTx{store: s})
	})
	return err
}

func (s *MongoSessionStore) DeleteByToken(ctx context.Context, token string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// sessionTx applies session mutations through the transaction-bound context
// handed to it by InTransaction.
type sessionTx struct {
	store *MongoSessionStore
}

func (tx *sessionTx) DeleteExpired(ctx context.Context, userID int64, now time.Time) (int64, error) {
	res, err := tx.store.coll.DeleteMany(ctx, bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$lt": now},
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return res.DeletedCount, nil
}

func (tx *sessionTx) EvictOverCap(ctx context.Context, userID int64, keep int) (int64, error) {
	// Collect the sequence numbers beyond the keep newest; everything below
	// the cut is deleted.
	cur, err := tx.store.coll.Find(
		ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "seq", Value: -1}}).
			SetSkip(int64(keep)).
			SetProjection(bson.M{"seq": 1}),
	)
	if err != nil {
		return 0, fmt.Errorf("list over-cap tokens: %w", err)
	}

	var over []int64
	for cur.Next(ctx) {
		var doc struct {
			Seq int64 `bson:"seq"`
		}
		if err := cur.Decode(&doc); err != nil {
			_ = cur.Close(ctx)
			return 0, fmt.Errorf("decode over-cap token: %w", err)
		}
		over = append(over, doc.Seq)
	}
	if err := cur.Err(); err != nil {
		return 0, fmt.Errorf("iterate over-cap tokens: %w", err)
	}
	if len(over) == 0 {
		return 0, nil
	}

	res, err := tx.store.coll.DeleteMany(ctx, bson.M{
		"user_id": userID,
		"seq":     bson.M{"$in": over},
	})
	if err != nil {
		return 0, fmt.Errorf("evict tokens: %w", err)
	}
	return res.DeletedCount, nil
}

func (tx *sessionTx) Insert(ctx context.Context, token domain.SessionToken) error {
	seq, err := tx.store.counters.next(ctx, sessionCollection)
	if err != nil {
		return err
	}

	doc := mongoSessionToken{
		Seq:       seq,
		UserID:    token.UserID,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.UTC(),
	}
	if _, err := tx.store.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}
