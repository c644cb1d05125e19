package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hariombangali/rentora-backend/internal/db"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

const bookingsCollection = "bookings"

// countableStatuses are the statuses that hold a visit slot. Rejected and
// cancelled visits release their slot immediately.
var countableStatuses = []models.BookingStatus{models.BookingPending, models.BookingApproved}

// IBookingRepository is the persistence layer for bookings. All queries
// that the booking, contact and calendar services need live here so the
// collection schema stays in one place.
type IBookingRepository interface {
	Insert(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id utils.SixID) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	FindByRequester(ctx context.Context, userID utils.SixID) ([]models.Booking, error)
	FindByOwner(ctx context.Context, ownerID utils.SixID, status models.BookingStatus) ([]models.Booking, error)
	FindActiveLead(ctx context.Context, userID, propertyID utils.SixID) (*models.Booking, error)
	CountVisitsInSlot(ctx context.Context, propertyID utils.SixID, day time.Time, slot string, exclude *utils.SixID) (int64, error)
	FindApprovedRentals(ctx context.Context, propertyID utils.SixID) ([]models.Booking, error)
	CountRevealsSince(ctx context.Context, userID utils.SixID, since time.Time) (int64, error)
	FindReveal(ctx context.Context, userID, propertyID utils.SixID) (*models.Booking, error)
}

type bookingRepository struct {
	db *mongo.Database
}

// NewBookingRepository creates a booking repository on the given database.
func NewBookingRepository(database *mongo.Database) IBookingRepository {
	return &bookingRepository{db: database}
}

func (r *bookingRepository) collection() *mongo.Collection {
	return r.db.Collection(bookingsCollection)
}

// Insert stores a new booking, generating its ID. Uses the duplicate-key
// retry wrapper so an ID collision regenerates instead of failing.
func (r *bookingRepository) Insert(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	err := db.Try(func() error {
		booking.GenID()
		_, insertErr := r.collection().InsertOne(ctx, booking)
		return insertErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id utils.SixID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking %s: %w", id, err)
	}
	return &booking, nil
}

// Update replaces the stored document with the given booking and bumps
// UpdatedAt.
func (r *bookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	booking.UpdatedAt = time.Now()
	res, err := r.collection().ReplaceOne(ctx, bson.M{"_id": booking.ID}, booking)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByRequester returns all bookings created by the user, newest first.
func (r *bookingRepository) FindByRequester(ctx context.Context, userID utils.SixID) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection().Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// FindByOwner returns bookings on the owner's properties, optionally
// filtered by status, newest first.
func (r *bookingRepository) FindByOwner(ctx context.Context, ownerID utils.SixID, status models.BookingStatus) ([]models.Booking, error) {
	filter := bson.M{"owner": ownerID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings for owner %s: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// FindActiveLead returns the user's open lead on a property, if any.
// Active means pending, approved or rescheduled.
func (r *bookingRepository) FindActiveLead(ctx context.Context, userID, propertyID utils.SixID) (*models.Booking, error) {
	filter := bson.M{
		"user":     userID,
		"property": propertyID,
		"type":     models.BookingTypeLead,
		"status": bson.M{"$in": []models.BookingStatus{
			models.BookingPending, models.BookingApproved, models.BookingRescheduled,
		}},
	}
	var booking models.Booking
	err := r.collection().FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active lead: %w", err)
	}
	return &booking, nil
}

// CountVisitsInSlot counts pending or approved visits occupying the given
// slot on the given day. The day range is half-open [day, day+24h).
// exclude, when set, leaves out one booking, used when rescheduling so a
// visit does not collide with itself.
func (r *bookingRepository) CountVisitsInSlot(ctx context.Context, propertyID utils.SixID, day time.Time, slot string, exclude *utils.SixID) (int64, error) {
	dayStart := DayStart(day)
	filter := bson.M{
		"property":   propertyID,
		"type":       models.BookingTypeVisit,
		"status":     bson.M{"$in": countableStatuses},
		"visit_slot": slot,
		"visit_date": bson.M{
			"$gte": dayStart,
			"$lt":  dayStart.Add(24 * time.Hour),
		},
	}
	if exclude != nil {
		filter["_id"] = bson.M{"$ne": *exclude}
	}
	count, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits in slot: %w", err)
	}
	return count, nil
}

// FindApprovedRentals returns every approved rental for the property.
// The overlap check runs in memory over the result.
func (r *bookingRepository) FindApprovedRentals(ctx context.Context, propertyID utils.SixID) ([]models.Booking, error) {
	filter := bson.M{
		"property": propertyID,
		"type":     models.BookingTypeRental,
		"status":   models.BookingApproved,
	}
	cursor, err := r.collection().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find approved rentals: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode rentals: %w", err)
	}
	return bookings, nil
}

// CountRevealsSince counts the user's reveal bookings created at or after
// the given instant, regardless of which property they were for.
func (r *bookingRepository) CountRevealsSince(ctx context.Context, userID utils.SixID, since time.Time) (int64, error) {
	filter := bson.M{
		"user":       userID,
		"type":       models.BookingTypeReveal,
		"created_at": bson.M{"$gte": since},
	}
	count, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reveals: %w", err)
	}
	return count, nil
}

// FindReveal returns the user's existing reveal booking for a property,
// or nil if none.
func (r *bookingRepository) FindReveal(ctx context.Context, userID, propertyID utils.SixID) (*models.Booking, error) {
	filter := bson.M{
		"user":     userID,
		"property": propertyID,
		"type":     models.BookingTypeReveal,
	}
	var booking models.Booking
	err := r.collection().FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reveal: %w", err)
	}
	return &booking, nil
}
