package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo() BookingRepository {
	return NewMongoBookingRepoWithCollection(database.Collection("bookings"))
}

func NewMongoBookingRepoWithCollection(coll *mongo.Collection) BookingRepository {
	repo := &MongoBookingRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("booking indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "reviewedAt", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err = repository.TranslateError(err); err == repository.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// compareAndSet applies update only when filter still matches, returning the
// new document. A miss is reported as ErrNotFound or ErrStale depending on
// whether the booking exists at all.
func (r *MongoBookingRepo) compareAndSet(ctx context.Context, id string, filter, update bson.M) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	filter["id"] = id
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if repository.TranslateError(err) != repository.ErrNotFound {
		return nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	n, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if countErr != nil {
		return nil, fmt.Errorf("failed to check booking %s: %w", id, countErr)
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrStale
}

func (r *MongoBookingRepo) TransitionStatus(ctx context.Context, id string, change models.StatusChange) (*models.Booking, error) {
	set := bson.M{"status": change.To, "updatedAt": change.At}
	if change.ProviderResponse != nil {
		set["providerResponse"] = change.ProviderResponse
	}
	if change.StartedAt != nil {
		set["startedAt"] = *change.StartedAt
	}
	if change.CompletionDetails != nil {
		set["completionDetails"] = change.CompletionDetails
	}
	if change.Cancellation != nil {
		set["cancellation"] = change.Cancellation
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	return r.compareAndSet(ctx, id, bson.M{"status": change.From}, update)
}

func (r *MongoBookingRepo) UpdatePayment(ctx context.Context, id string, expected models.PaymentStatus, payment models.Payment) (*models.Booking, error) {
	update := bson.M{
		"$set": bson.M{"payment": payment, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}
	return r.compareAndSet(ctx, id, bson.M{"payment.status": expected}, update)
}

func (r *MongoBookingRepo) SetReview(ctx context.Context, id string, rating int, review string, at time.Time) (*models.Booking, error) {
	filter := bson.M{
		"status": models.StatusCompleted,
		"$or":    bson.A{bson.M{"rating": bson.M{"$exists": false}}, bson.M{"rating": 0}},
	}
	update := bson.M{
		"$set": bson.M{"rating": rating, "review": review, "reviewedAt": at, "updatedAt": at},
		"$inc": bson.M{"version": 1},
	}
	return r.compareAndSet(ctx, id, filter, update)
}
