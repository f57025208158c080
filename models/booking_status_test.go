package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingTransitionTable(t *testing.T) {
	cases := []struct {
		from   BookingStatus
		action BookingAction
		to     BookingStatus
		ok     bool
	}{
		{StatusPending, ActionAccept, StatusAccepted, true},
		{StatusPending, ActionDecline, StatusDeclined, true},
		{StatusPending, ActionCancel, StatusCancelled, true},
		{StatusPending, ActionStart, "", false},
		{StatusPending, ActionComplete, "", false},
		{StatusAccepted, ActionStart, StatusInProgress, true},
		{StatusAccepted, ActionCancel, StatusCancelled, true},
		{StatusAccepted, ActionAccept, "", false},
		{StatusAccepted, ActionDecline, "", false},
		{StatusInProgress, ActionComplete, StatusCompleted, true},
		{StatusInProgress, ActionCancel, StatusCancelled, true},
		{StatusInProgress, ActionStart, "", false},
		{StatusDeclined, ActionCancel, StatusCancelled, true},
		{StatusDeclined, ActionAccept, "", false},
		{StatusCompleted, ActionCancel, "", false},
		{StatusCancelled, ActionCancel, "", false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+string(tc.action), func(t *testing.T) {
			to, ok := tc.from.Next(tc.action)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.to, to)
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range AllBookingStatuses {
		want := s == StatusCompleted || s == StatusCancelled
		assert.Equal(t, want, s.IsTerminal(), string(s))
	}
	assert.True(t, BookingStatus("unknown").IsTerminal())
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("in_progress")
	assert.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	_, err = ParseBookingStatus("confirmed")
	assert.Error(t, err)
}

func TestPageNormalizeAndPagination(t *testing.T) {
	p := Page{Page: 0, Limit: 500}.Normalize(10, 50)
	assert.Equal(t, Page{Page: 1, Limit: 50}, p)
	assert.Equal(t, 0, p.Skip())

	pg := NewPagination(Page{Page: 2, Limit: 10}, 25)
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)
}

func TestPageNormalizeBoundsHugePages(t *testing.T) {
	p := Page{Page: math.MaxInt64, Limit: 20}.Normalize(10, 50)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, math.MaxInt32/20, p.Page)
	assert.Greater(t, p.Skip(), 0)
	assert.LessOrEqual(t, p.Skip(), math.MaxInt32)
}
