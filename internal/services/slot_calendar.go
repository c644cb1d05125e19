package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// DayStart normalizes a timestamp to UTC midnight of its calendar day.
// All slot-day comparisons run on this boundary.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ISlotCalendar reports per-day visit slot availability for a property.
type ISlotCalendar interface {
	Availability(ctx context.Context, propertyID utils.SixID, day time.Time) ([]models.Slot, error)
	IsSlotFull(ctx context.Context, propertyID utils.SixID, day time.Time, slot string, exclude *utils.SixID) (bool, error)
}

type slotCalendar struct {
	repo     IBookingRepository
	capacity int
}

// NewSlotCalendar creates a slot calendar with the given per-slot
// capacity.
func NewSlotCalendar(repo IBookingRepository, capacity int) ISlotCalendar {
	if capacity <= 0 {
		capacity = 1
	}
	return &slotCalendar{repo: repo, capacity: capacity}
}

// Availability returns the fixed slot grid for the day with each slot
// flagged full or free, in display order.
func (c *slotCalendar) Availability(ctx context.Context, propertyID utils.SixID, day time.Time) ([]models.Slot, error) {
	slots := make([]models.Slot, 0, len(models.VisitSlots))
	for i, name := range models.VisitSlots {
		count, err := c.repo.CountVisitsInSlot(ctx, propertyID, day, name, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to compute availability: %w", err)
		}
		slots = append(slots, models.Slot{
			ID:     i + 1,
			Time:   name,
			IsFull: count >= int64(c.capacity),
		})
	}
	return slots, nil
}

// IsSlotFull reports whether the slot has reached capacity on the day.
// exclude leaves one booking out of the count, for reschedules.
func (c *slotCalendar) IsSlotFull(ctx context.Context, propertyID utils.SixID, day time.Time, slot string, exclude *utils.SixID) (bool, error) {
	count, err := c.repo.CountVisitsInSlot(ctx, propertyID, day, slot, exclude)
	if err != nil {
		return false, err
	}
	return count >= int64(c.capacity), nil
}
