package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hariombangali/rentora-backend/internal/utils"
)

// RangesOverlap reports whether an existing stay [checkIn, checkOut]
// overlaps the requested range [start, end]. Boundaries are inclusive:
// a checkout on the requested start date still blocks it. A nil checkOut
// means an open-ended stay, which blocks every range from checkIn onward.
func RangesOverlap(checkIn time.Time, checkOut *time.Time, start, end time.Time) bool {
	if checkIn.After(end) {
		return false
	}
	if checkOut == nil {
		return true
	}
	return !checkOut.Before(start)
}

// IOverlapChecker answers whether a property has an approved rental
// overlapping a date range.
type IOverlapChecker interface {
	HasApprovedOverlap(ctx context.Context, propertyID utils.SixID, start time.Time, end *time.Time) (bool, error)
}

type overlapChecker struct {
	repo IBookingRepository
}

// NewOverlapChecker creates an overlap checker backed by the booking
// repository.
func NewOverlapChecker(repo IBookingRepository) IOverlapChecker {
	return &overlapChecker{repo: repo}
}

// HasApprovedOverlap checks the requested range against every approved
// rental of the property. A nil end collapses the range to the single
// day of start.
func (c *overlapChecker) HasApprovedOverlap(ctx context.Context, propertyID utils.SixID, start time.Time, end *time.Time) (bool, error) {
	rangeEnd := start
	if end != nil {
		rangeEnd = *end
	}

	rentals, err := c.repo.FindApprovedRentals(ctx, propertyID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, fmt.Errorf("failed to load rentals for overlap check: %w", err)
	}

	for _, r := range rentals {
		if r.CheckIn == nil {
			continue
		}
		if RangesOverlap(*r.CheckIn, r.CheckOut, start, rangeEnd) {
			return true, nil
		}
	}
	return false, nil
}
