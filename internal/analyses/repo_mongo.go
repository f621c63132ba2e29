package analyses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoRepo struct {
	Coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{Coll: db.Collection("recommendations")}
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "documentId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("recommendations indexes: %w", err)
	}
	return nil
}

func (r *MongoRepo) CreateMany(ctx context.Context, recs []Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]any, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, rec)
	}
	_, err := r.Coll.InsertMany(ctx, docs)
	return err
}

// ListByDocument sorts in process; severity is stored as a label, not a rank.
func (r *MongoRepo) ListByDocument(ctx context.Context, documentID string) ([]Recommendation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.Coll.Find(ctx, bson.D{{Key: "documentId", Value: documentID}}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Recommendation, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	sortRecommendations(out)
	return out, nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (Recommendation, error) {
	var rec Recommendation
	if err := r.Coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Recommendation{}, ErrNotFound
		}
		return Recommendation{}, err
	}
	return rec, nil
}

func (r *MongoRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) (Recommendation, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updatedAt", Value: at},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec Recommendation
	if err := r.Coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Recommendation{}, ErrNotFound
		}
		return Recommendation{}, err
	}
	return rec, nil
}

func (r *MongoRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.Coll.DeleteMany(ctx, bson.D{{Key: "documentId", Value: documentID}})
	return err
}
