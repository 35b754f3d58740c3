package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cppla/momentum/ledger"
)

const mongoCollection = "ledgers"

type mongoLedger struct {
	ProfileID string    `bson:"_id"`
	Document  string    `bson:"document"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore keeps one document per profile in the ledgers collection.
type MongoStore struct {
	collection *mongo.Collection
}

var _ ledger.Store = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(mongoCollection)}
}

func (s *MongoStore) Load(ctx context.Context, profile string) ([]byte, error) {
	var doc mongoLedger
	err := s.collection.FindOne(ctx, bson.M{"_id": profile}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrNoDocument
		}
		return nil, err
	}
	return []byte(doc.Document), nil
}

func (s *MongoStore) Save(ctx context.Context, profile string, doc []byte) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": profile},
		mongoLedger{ProfileID: profile, Document: string(doc), UpdatedAt: time.Now()},
		options.Replace().SetUpsert(true),
	)
	return err
}
