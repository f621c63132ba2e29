package documents

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
	return &MongoRepo{Coll: db.Collection("documents")}
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("documents indexes: %w", err)
	}
	return nil
}

func (r *MongoRepo) Create(ctx context.Context, doc Document) error {
	_, err := r.Coll.InsertOne(ctx, doc)
	return err
}

func (r *MongoRepo) GetByID(ctx context.Context, userID, id string) (Document, error) {
	var doc Document
	err := r.Coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.Coll.Find(ctx, bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepo) TransitionStatus(ctx context.Context, userID, id, from, to string, at time.Time) (Document, error) {
	set := bson.D{
		{Key: "status", Value: to},
		{Key: "updatedAt", Value: at},
	}
	if to == StatusCompleted {
		set = append(set, bson.E{Key: "analyzedAt", Value: at})
	}
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "userId", Value: userID},
		{Key: "status", Value: from},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc Document
	err := r.Coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, err
	}
	current, getErr := r.GetByID(ctx, userID, id)
	if getErr != nil {
		return Document{}, getErr
	}
	return current, ErrStatusConflict
}

func (r *MongoRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.Coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
