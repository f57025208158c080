package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucketKeys(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-05", BucketDaily.Key(ts))
	assert.Equal(t, "2024-03", BucketMonthly.Key(ts))
	// 2024-01-07 is the first Sunday, so 2024-03-05 (Tuesday) is in week 09.
	assert.Equal(t, "2024-09", BucketWeekly.Key(ts))
}

func TestWeeklyKeyBeforeFirstSunday(t *testing.T) {
	assert.Equal(t, "2024-00", BucketWeekly.Key(time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01", BucketWeekly.Key(time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)))
}

func TestBucketKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2024, time.March, 6, 1, 0, 0, 0, loc)
	assert.Equal(t, "2024-03-05", BucketDaily.Key(ts))
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket("")
	assert.NoError(t, err)
	assert.Equal(t, BucketDaily, b)

	b, err = ParseBucket("Monthly")
	assert.NoError(t, err)
	assert.Equal(t, BucketMonthly, b)

	_, err = ParseBucket("hourly")
	assert.Error(t, err)
}
