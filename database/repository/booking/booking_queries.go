package bookingRepo

import (
	"context"
	"fmt"

	"easybook/database/repository"
	"easybook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func bookingFilterDocument(filter models.BookingFilter) bson.M {
	query := repository.RangeMatch("createdAt", filter.Created)
	if filter.CustomerID != "" {
		query["customerId"] = filter.CustomerID
	}
	if filter.ProviderID != "" {
		query["providerId"] = filter.ProviderID
	}
	if filter.PartyID != "" {
		query["$or"] = bson.A{
			bson.M{"customerId": filter.PartyID},
			bson.M{"providerId": filter.PartyID},
		}
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	for field, value := range repository.RangeMatch("bookingDate", filter.Scheduled) {
		query[field] = value
	}
	if filter.HasPayment {
		query["payment.transactionId"] = bson.M{"$exists": true, "$ne": ""}
	}
	if filter.Rating > 0 {
		query["rating"] = filter.Rating
	} else if filter.Rated {
		query["rating"] = bson.M{"$gte": 1}
	}
	return query
}

func bookingSortDocument(sort models.BookingSort) bson.D {
	switch sort {
	case models.SortBySchedule:
		return bson.D{{Key: "bookingDate", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "id", Value: 1}}
	case models.SortByReviewed:
		return bson.D{{Key: "reviewedAt", Value: -1}, {Key: "id", Value: 1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: 1}}
}

// isStatus is a 1/0 expression for summing bookings in one status.
func isStatus(status models.BookingStatus) bson.M {
	return bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0}}
}

func completedAmount() bson.M {
	return bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusCompleted}}, "$totalAmount", 0}}
}

func (r *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter, page models.Page) ([]models.Booking, int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	query := bookingFilterDocument(filter)
	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	opts := options.Find().
		SetSort(bookingSortDocument(filter.Sort)).
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.Limit))
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *MongoBookingRepo) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func (r *MongoBookingRepo) StatusCounts(ctx context.Context, filter models.BookingFilter) (models.BookingStatusCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bookingFilterDocument(filter)}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	var rows []struct {
		Status models.BookingStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}
	counts := make(models.BookingStatusCounts, len(models.AllBookingStatuses))
	for _, status := range models.AllBookingStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *MongoBookingRepo) CompletedRevenue(ctx context.Context, filter models.BookingFilter) (float64, error) {
	filter.Status = models.StatusCompleted
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bookingFilterDocument(filter)}},
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$totalAmount"}}}},
	}
	var rows []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Revenue, nil
}

func (r *MongoBookingRepo) Buckets(ctx context.Context, filter models.BookingFilter, bucket models.Bucket) ([]models.BookingBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bookingFilterDocument(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id":               repository.BucketKey("$createdAt", bucket),
			"totalBookings":     bson.M{"$sum": 1},
			"completedBookings": bson.M{"$sum": isStatus(models.StatusCompleted)},
			"cancelledBookings": bson.M{"$sum": isStatus(models.StatusCancelled)},
			"totalRevenue":      bson.M{"$sum": completedAmount()},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	buckets := []models.BookingBucket{}
	if err := r.aggregate(ctx, pipeline, &buckets); err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	return buckets, nil
}

func (r *MongoBookingRepo) PerformanceTotals(ctx context.Context, dateRange models.DateRange, key GroupKey) ([]models.PerformanceTotals, error) {
	groupID, name := "$providerId", "$providerName"
	if key == ByService {
		groupID, name = "$serviceId", "$serviceName"
	}
	rated := bson.M{"$gt": bson.A{bson.M{"$ifNull": bson.A{"$rating", 0}}, 0}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: repository.RangeMatch("createdAt", dateRange)}},
		{{Key: "$group", Value: bson.M{
			"_id":         groupID,
			"name":        bson.M{"$last": name},
			"category":    bson.M{"$last": "$serviceCategory"},
			"total":       bson.M{"$sum": 1},
			"completed":   bson.M{"$sum": isStatus(models.StatusCompleted)},
			"cancelled":   bson.M{"$sum": isStatus(models.StatusCancelled)},
			"revenue":     bson.M{"$sum": completedAmount()},
			"ratingSum":   bson.M{"$sum": bson.M{"$cond": bson.A{rated, "$rating", 0}}},
			"ratingCount": bson.M{"$sum": bson.M{"$cond": bson.A{rated, 1, 0}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "revenue", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	totals := []models.PerformanceTotals{}
	if err := r.aggregate(ctx, pipeline, &totals); err != nil {
		return nil, fmt.Errorf("failed to aggregate %s performance: %w", key, err)
	}
	return totals, nil
}

func (r *MongoBookingRepo) ReviewTotals(ctx context.Context, dateRange models.DateRange) ([]models.ReviewTotals, error) {
	match := repository.RangeMatch("reviewedAt", dateRange)
	match["rating"] = bson.M{"$gte": 1, "$lte": 5}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":         bson.M{"serviceId": "$serviceId", "rating": "$rating"},
			"serviceName": bson.M{"$last": "$serviceName"},
			"count":       bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":         0,
			"serviceId":   "$_id.serviceId",
			"rating":      "$_id.rating",
			"serviceName": 1,
			"count":       1,
		}}},
	}
	totals := []models.ReviewTotals{}
	if err := r.aggregate(ctx, pipeline, &totals); err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return totals, nil
}

func (r *MongoBookingRepo) RatingCounts(ctx context.Context, filter models.BookingFilter) ([]models.RatingCount, error) {
	filter.Rated = true
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bookingFilterDocument(filter)}},
		{{Key: "$group", Value: bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	counts := []models.RatingCount{}
	if err := r.aggregate(ctx, pipeline, &counts); err != nil {
		return nil, fmt.Errorf("failed to count ratings: %w", err)
	}
	return counts, nil
}

func (r *MongoBookingRepo) FavoriteTotals(ctx context.Context, customerID string, key GroupKey, limit int) ([]models.FavoriteTotals, error) {
	group := bson.M{
		"_id":          "$providerId",
		"name":         bson.M{"$last": "$providerName"},
		"providerId":   bson.M{"$last": "$providerId"},
		"providerName": bson.M{"$last": "$providerName"},
		"bookingCount": bson.M{"$sum": 1},
		"totalSpent":   bson.M{"$sum": "$totalAmount"},
		"lastBooked":   bson.M{"$max": "$createdAt"},
	}
	if key == ByService {
		group["_id"] = "$serviceId"
		group["name"] = bson.M{"$last": "$serviceName"}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"customerId": customerID, "status": models.StatusCompleted}}},
		{{Key: "$sort", Value: bson.M{"createdAt": 1}}},
		{{Key: "$group", Value: group}},
		{{Key: "$sort", Value: bson.D{{Key: "bookingCount", Value: -1}, {Key: "lastBooked", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	totals := []models.FavoriteTotals{}
	if err := r.aggregate(ctx, pipeline, &totals); err != nil {
		return nil, fmt.Errorf("failed to aggregate favourite %ss: %w", key, err)
	}
	return totals, nil
}
