package templates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoRepo struct {
	Coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{Coll: db.Collection("templates")}
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("templates indexes: %w", err)
	}
	return nil
}

func (r *MongoRepo) ListActive(ctx context.Context, category string) ([]Template, error) {
	filter := bson.D{{Key: "isActive", Value: true}}
	if category != "" {
		filter = append(filter, bson.E{Key: "category", Value: category})
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Template, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepo) Categories(ctx context.Context) ([]string, error) {
	res := r.Coll.Distinct(ctx, "category", bson.D{{Key: "isActive", Value: true}})
	var out []string
	if err := res.Decode(&out); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (Template, error) {
	var t Template
	if err := r.Coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	return t, nil
}

func (r *MongoRepo) Count(ctx context.Context) (int64, error) {
	return r.Coll.CountDocuments(ctx, bson.D{})
}

func (r *MongoRepo) InsertMany(ctx context.Context, tpls []Template) error {
	if len(tpls) == 0 {
		return nil
	}
	docs := make([]any, 0, len(tpls))
	for _, t := range tpls {
		docs = append(docs, t)
	}
	_, err := r.Coll.InsertMany(ctx, docs)
	return err
}

type MongoUserRepo struct {
	Coll *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{Coll: db.Collection("usertemplates")}
}

// EnsureIndexes creates the partial unique index backing Upsert.
func (r *MongoUserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "templateId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "isActive", Value: true}}),
		},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("usertemplates indexes: %w", err)
	}
	return nil
}

func (r *MongoUserRepo) ListActiveByUser(ctx context.Context, userID string) ([]UserTemplate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.Coll.Find(ctx, bson.D{{Key: "userId", Value: userID}, {Key: "isActive", Value: true}}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]UserTemplate, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert retries once when a concurrent insert wins the unique index.
func (r *MongoUserRepo) Upsert(ctx context.Context, ut UserTemplate) (UserTemplate, error) {
	out, err := r.upsert(ctx, ut)
	if mongo.IsDuplicateKeyError(err) {
		out, err = r.upsert(ctx, ut)
	}
	return out, err
}

func (r *MongoUserRepo) upsert(ctx context.Context, ut UserTemplate) (UserTemplate, error) {
	id := ut.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := ut.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	filter := bson.D{
		{Key: "userId", Value: ut.UserID},
		{Key: "templateId", Value: ut.TemplateID},
		{Key: "isActive", Value: true},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "title", Value: ut.Title},
			{Key: "data", Value: ut.Data},
			{Key: "updatedAt", Value: ut.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "createdAt", Value: createdAt},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out UserTemplate
	if err := r.Coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return UserTemplate{}, err
	}
	return out, nil
}

func (r *MongoUserRepo) Deactivate(ctx context.Context, userID, id string) error {
	res, err := r.Coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "isActive", Value: false},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
