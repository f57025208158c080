package availabilityRepo

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

// AvailabilityRepository stores date-specific provider calendars, one entry
// per provider and day.
type AvailabilityRepository interface {
	// Upsert replaces the entry for (ProviderID, Date), keeping its ID and CreatedAt.
	Upsert(ctx context.Context, entry *models.ProviderAvailability) (*models.ProviderAvailability, error)
	// List returns the provider's entries inside dates, ascending by date.
	List(ctx context.Context, providerID string, dates models.DateRange) ([]models.ProviderAvailability, error)
}

type mongoRepo struct {
	col *mongo.Collection
}

func NewMongoAvailabilityRepo() AvailabilityRepository {
	return NewMongoAvailabilityRepoWithCollection(database.Collection("provider_availability"))
}

func NewMongoAvailabilityRepoWithCollection(col *mongo.Collection) AvailabilityRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		utils.GetLogger().Warn("availability indexes not created", zap.Error(err))
	}
	return &mongoRepo{col: col}
}

func (r *mongoRepo) Upsert(ctx context.Context, entry *models.ProviderAvailability) (*models.ProviderAvailability, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"timeSlots":    entry.TimeSlots,
			"isWorkingDay": entry.IsWorkingDay,
			"notes":        entry.Notes,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"id":        entry.ID,
			"createdAt": now,
		},
	}
	filter := bson.M{"providerId": entry.ProviderID, "date": entry.Date}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored models.ProviderAvailability
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to save availability: %w", repository.TranslateError(err))
	}
	return &stored, nil
}

func (r *mongoRepo) List(ctx context.Context, providerID string, dates models.DateRange) ([]models.ProviderAvailability, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	filter := repository.RangeMatch("date", dates)
	filter["providerId"] = providerID
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.ProviderAvailability{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	return entries, nil
}
