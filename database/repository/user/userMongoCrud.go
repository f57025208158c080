package userRepo

import (
	"context"
	"fmt"
	"time"

	"easybook/database"
	"easybook/database/repository"
	"easybook/models"
	"easybook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo() UserRepository {
	return NewMongoUserRepoWithCollection(database.Collection("users"))
}

// NewMongoUserRepoWithCollection wires the repo onto an explicit collection.
func NewMongoUserRepoWithCollection(coll *mongo.Collection) UserRepository {
	repo := &MongoUserRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("user indexes not created", zap.Error(err))
	}
	return repo
}

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update applies the patch and returns the document after the write.
func (r *MongoUserRepo) Update(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": patch.SetDocument(time.Now().UTC())}, opts).Decode(&user)
	if err != nil {
		if err = repository.TranslateError(err); err == repository.ErrNotFound || err == repository.ErrDuplicate {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user with id %s: %w", id, err)
	}
	return &user, nil
}

// AddProviderService records a listing on the provider's profile.
func (r *MongoUserRepo) AddProviderService(ctx context.Context, providerID, serviceID string) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{
		"$addToSet": bson.M{"providerInfo.services": serviceID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": providerID, "role": models.RoleProvider}, update)
	if err != nil {
		return fmt.Errorf("failed to link service %s to provider %s: %w", serviceID, providerID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ApplyProviderRating updates the running average in a single pipeline update
// so concurrent reviews never overwrite each other.
func (r *MongoUserRepo) ApplyProviderRating(ctx context.Context, providerID string, rating int) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	count := bson.M{"$ifNull": bson.A{"$providerInfo.rating.count", 0}}
	average := bson.M{"$ifNull": bson.A{"$providerInfo.rating.average", 0}}
	next := bson.M{"$add": bson.A{count, 1}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"providerInfo.rating.average": bson.M{"$divide": bson.A{
			bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{average, count}}, rating}},
			next,
		}},
		"providerInfo.rating.count": next,
		"updatedAt":                 time.Now().UTC(),
	}}}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": providerID}, update)
	if err != nil {
		return fmt.Errorf("failed to apply rating to provider %s: %w", providerID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
