package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func TestRangesOverlap(t *testing.T) {
	// Existing stay Jan 10 - Jan 20.
	ci := day("2026-01-10")
	co := dayPtr("2026-01-20")

	// Fully inside.
	assert.True(t, RangesOverlap(ci, co, day("2026-01-12"), day("2026-01-15")))
	// Straddles the start.
	assert.True(t, RangesOverlap(ci, co, day("2026-01-05"), day("2026-01-10")))
	// Straddles the end.
	assert.True(t, RangesOverlap(ci, co, day("2026-01-20"), day("2026-01-25")))
	// Contains the stay entirely.
	assert.True(t, RangesOverlap(ci, co, day("2026-01-01"), day("2026-01-31")))

	// Clear of both ends.
	assert.False(t, RangesOverlap(ci, co, day("2026-01-01"), day("2026-01-05")))
	assert.False(t, RangesOverlap(ci, co, day("2026-01-21"), day("2026-01-25")))
}

func TestRangesOverlap_BoundariesAreInclusive(t *testing.T) {
	ci := day("2026-01-10")
	co := dayPtr("2026-01-20")

	// A checkout on the requested start date still blocks it.
	assert.True(t, RangesOverlap(ci, co, day("2026-01-20"), day("2026-01-20")))
	// A check-in on the requested end date still blocks it.
	assert.True(t, RangesOverlap(ci, co, day("2026-01-08"), day("2026-01-10")))
	// One day off either boundary is free.
	assert.False(t, RangesOverlap(ci, co, day("2026-01-21"), day("2026-01-21")))
	assert.False(t, RangesOverlap(ci, co, day("2026-01-09"), day("2026-01-09")))
}

func TestRangesOverlap_OpenCheckoutBlocksAllFuture(t *testing.T) {
	ci := day("2026-01-10")

	assert.True(t, RangesOverlap(ci, nil, day("2026-01-10"), day("2026-01-10")))
	assert.True(t, RangesOverlap(ci, nil, day("2026-06-01"), day("2026-06-30")))
	assert.True(t, RangesOverlap(ci, nil, day("2030-01-01"), day("2030-01-02")))
	// Entirely before the open-ended check-in stays free.
	assert.False(t, RangesOverlap(ci, nil, day("2026-01-01"), day("2026-01-09")))
	// Touching the check-in day conflicts.
	assert.True(t, RangesOverlap(ci, nil, day("2026-01-05"), day("2026-01-10")))
}

func TestDayStart(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2026, 3, 15, 23, 45, 0, 0, loc)
	got := DayStart(ts)
	// 23:45 IST is 18:15 UTC the same day.
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, got, DayStart(got))
}
