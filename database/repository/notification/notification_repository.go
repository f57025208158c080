package notificationRepo

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

// NotificationRepository is the per-user inbox.
type NotificationRepository interface {
	// Insert stores notif unless one with the same ID exists and returns the
	// stored copy, whose Pushed/Emailed flags survive redelivery.
	Insert(ctx context.Context, notif *models.Notification) (models.Notification, error)
	// MarkSent records the channels that went out.
	MarkSent(ctx context.Context, id string, pushed, emailed bool) error
	List(ctx context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkAsRead flags one of the user's notifications as read.
	MarkAsRead(ctx context.Context, userID, id string) error
}

type mongoRepo struct {
	col *mongo.Collection
}

func NewMongoNotificationRepo() NotificationRepository {
	return NewMongoNotificationRepoWithCollection(database.Collection("notifications"))
}

func NewMongoNotificationRepoWithCollection(col *mongo.Collection) NotificationRepository {
	repo := &mongoRepo{col: col}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		utils.GetLogger().Warn("notification indexes not created", zap.Error(err))
	}
	return repo
}

func (r *mongoRepo) Insert(ctx context.Context, notif *models.Notification) (models.Notification, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now().UTC()
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored models.Notification
	err := r.col.FindOneAndUpdate(ctx, bson.M{"id": notif.ID}, bson.M{"$setOnInsert": notif}, opts).Decode(&stored)
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to save notification: %w", err)
	}
	return stored, nil
}

func (r *mongoRepo) MarkSent(ctx context.Context, id string, pushed, emailed bool) error {
	set := bson.M{}
	if pushed {
		set["pushed"] = true
	}
	if emailed {
		set["emailed"] = true
	}
	if len(set) == 0 {
		return nil
	}
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	result, err := r.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to record notification channels: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func inboxFilter(userID string, unreadOnly bool) bson.M {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["read"] = false
	}
	return filter
}

func (r *mongoRepo) List(ctx context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	filter := inboxFilter(userID, unreadOnly)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, total, nil
}

func (r *mongoRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, inboxFilter(userID, true))
}

func (r *mongoRepo) MarkAsRead(ctx context.Context, userID, id string) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	result, err := r.col.UpdateOne(ctx, bson.M{"id": id, "userId": userID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
