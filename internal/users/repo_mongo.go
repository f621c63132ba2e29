package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "users"

type MongoRepo struct {
	Coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{Coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique email index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	return nil
}

func (r *MongoRepo) Create(ctx context.Context, user User) error {
	if _, err := r.Coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *MongoRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: userID}})
}

func (r *MongoRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	return r.updateOne(ctx, userID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "resetPasswordToken", Value: tokenHash},
		{Key: "resetPasswordExpires", Value: expires.UTC()},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

func (r *MongoRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (User, error) {
	return r.findOne(ctx, bson.D{
		{Key: "resetPasswordToken", Value: tokenHash},
		{Key: "resetPasswordExpires", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	})
}

func (r *MongoRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.updateOne(ctx, userID, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "password", Value: passwordHash},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}},
		{Key: "$unset", Value: bson.D{
			{Key: "resetPasswordToken", Value: ""},
			{Key: "resetPasswordExpires", Value: ""},
		}},
	})
}

func (r *MongoRepo) findOne(ctx context.Context, filter bson.D) (User, error) {
	var user User
	if err := r.Coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *MongoRepo) updateOne(ctx context.Context, userID string, update bson.D) error {
	res, err := r.Coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
