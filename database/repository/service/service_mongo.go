package serviceRepo

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

// MongoServiceRepo implements ServiceRepository using MongoDB.
type MongoServiceRepo struct {
	coll *mongo.Collection
}

func NewMongoServiceRepo() ServiceRepository {
	return NewMongoServiceRepoWithCollection(database.Collection("services"))
}

func NewMongoServiceRepoWithCollection(coll *mongo.Collection) ServiceRepository {
	repo := &MongoServiceRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("service indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoServiceRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "providerId", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoServiceRepo) Create(ctx context.Context, service *models.Service) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	service.CreatedAt = now
	service.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, service); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *MongoServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var service models.Service
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&service); err != nil {
		if err = repository.TranslateError(err); err == repository.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch service %s: %w", id, err)
	}
	return &service, nil
}

func (r *MongoServiceRepo) Update(ctx context.Context, service *models.Service) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	service.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":         service.Name,
		"description":  service.Description,
		"category":     service.Category,
		"price":        service.Price,
		"duration":     service.Duration,
		"images":       service.Images,
		"availability": service.Availability,
		"serviceArea":  service.ServiceArea,
		"tags":         service.Tags,
		"isActive":     service.IsActive,
		"updatedAt":    service.UpdatedAt,
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": service.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update service %s: %w", service.ID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoServiceRepo) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate service %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ApplyRating uses a pipeline update so concurrent reviews compose.
func (r *MongoServiceRepo) ApplyRating(ctx context.Context, id string, rating int) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	count := bson.M{"$ifNull": bson.A{"$reviewCount", 0}}
	average := bson.M{"$ifNull": bson.A{"$rating", 0}}
	next := bson.M{"$add": bson.A{count, 1}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"rating": bson.M{"$divide": bson.A{
			bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{average, count}}, rating}},
			next,
		}},
		"reviewCount": next,
		"updatedAt":   time.Now().UTC(),
	}}}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to apply rating to service %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoServiceRepo) RenameProvider(ctx context.Context, providerID, name string) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	_, err := r.coll.UpdateMany(ctx, bson.M{"providerId": providerID}, bson.M{"$set": bson.M{"providerName": name}})
	if err != nil {
		return fmt.Errorf("failed to rename provider on services: %w", err)
	}
	return nil
}
