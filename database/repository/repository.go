package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"easybook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned on a unique index violation.
	ErrDuplicate = errors.New("duplicate key")
	// ErrStale is returned when a conditional update finds the document
	// no longer in the expected state.
	ErrStale = errors.New("document changed concurrently")
)

// DefaultTimeout bounds every single repository call.
const DefaultTimeout = 5 * time.Second

// WithTimeout derives a bounded context for one database round trip.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// TranslateError maps driver errors onto the repository sentinels.
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}

// RangeMatch builds a closed-open match on a timestamp field.
func RangeMatch(field string, r models.DateRange) bson.M {
	bounds := bson.M{}
	if !r.From.IsZero() {
		bounds["$gte"] = r.From
	}
	if !r.To.IsZero() {
		bounds["$lt"] = r.To
	}
	if len(bounds) == 0 {
		return bson.M{}
	}
	return bson.M{field: bounds}
}

// BucketKey renders a timestamp expression as the bucket label, in UTC.
func BucketKey(expr string, bucket models.Bucket) bson.M {
	return bson.M{"$dateToString": bson.M{"format": bucket.MongoFormat(), "date": expr, "timezone": "UTC"}}
}

// ContainsPattern is a case-insensitive substring match on a literal term.
func ContainsPattern(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}
