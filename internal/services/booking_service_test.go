package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

func setupBookingTestDB(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "bookings", "properties", "users")
}

func insertTestUser(t *testing.T, db *mongo.Database, role models.Role, phone string) *models.User {
	t.Helper()
	user := &models.User{
		Base:      models.NewBase(),
		Name:      "Test User",
		Email:     utils.NewSixID().String() + "@example.com",
		Role:      role,
		Contact:   phone,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err := db.Collection("users").InsertOne(context.Background(), user)
	require.NoError(t, err)
	return user
}

func insertTestProperty(t *testing.T, db *mongo.Database, ownerID utils.SixID, price float64) *models.Property {
	t.Helper()
	property := &models.Property{
		Base:        models.NewBase(),
		UserID:      ownerID,
		Title:       "2BHK near station",
		Price:       price,
		Type:        models.PropertyType2BHK,
		Location:    models.PropertyLocation{City: "Indore", Address: "12 MG Road", Pincode: "452001"},
		Approved:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Description: "test listing",
	}
	_, err := db.Collection("properties").InsertOne(context.Background(), property)
	require.NoError(t, err)
	return property
}

func newBookingTestService(db *mongo.Database) (IBookingService, IBookingRepository) {
	users := NewUserService(db)
	props := NewPropertyService(db, users)
	repo := NewBookingRepository(db)
	calendar := NewSlotCalendar(repo, 1)
	overlap := NewOverlapChecker(repo)
	return NewBookingService(repo, props, calendar, overlap, nil), repo
}

func TestBookingService_CreateLead_MergesActiveLead(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_lead_merge")
	svc, _ := newBookingTestService(db)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	first, outcome, err := svc.Create(ctx, seeker.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeLead,
		Message:    "Is this available?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lead created", outcome)
	assert.Equal(t, models.BookingPending, first.Status)
	assert.Equal(t, owner.ID, first.OwnerID)

	second, outcome, err := svc.Create(ctx, seeker.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeLead,
		Message:    "Also, is parking included?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lead updated", outcome)
	assert.Equal(t, first.ID, second.ID)
	assert.Contains(t, second.Message, "Is this available?")
	assert.Contains(t, second.Message, "parking included")
}

func TestBookingService_Create_RejectsSelfBooking(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_self")
	svc, _ := newBookingTestService(db)

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	property := insertTestProperty(t, db, owner.ID, 12000)

	_, _, err := svc.Create(context.Background(), owner.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeLead,
		Message:    "hello me",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingService_Create_RejectsLeadWithoutMessage(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_empty_lead")
	svc, _ := newBookingTestService(db)

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	_, _, err := svc.Create(context.Background(), seeker.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeLead,
		Message:    "   ",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingService_CreateVisit_SlotGate(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_visit_slot")
	svc, _ := newBookingTestService(db)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seekerA := insertTestUser(t, db, models.RoleUser, "")
	seekerB := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	visitDate := time.Date(2026, 9, 10, 14, 30, 0, 0, time.Local)
	booking, outcome, err := svc.Create(ctx, seekerA.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeVisit,
		VisitDate:  &visitDate,
		VisitSlot:  "10:00 AM",
	})
	require.NoError(t, err)
	assert.Equal(t, "Visit requested", outcome)
	// The stored date is normalized to day granularity.
	assert.Equal(t, DayStart(visitDate), *booking.VisitDate)

	// Same slot, same day: full.
	_, _, err = svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeVisit,
		VisitDate:  &visitDate,
		VisitSlot:  "10:00 AM",
	})
	assert.ErrorIs(t, err, ErrConflict)

	// Different slot same day is fine.
	_, _, err = svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeVisit,
		VisitDate:  &visitDate,
		VisitSlot:  "12:00 PM",
	})
	assert.NoError(t, err)

	// Same slot next day is fine.
	nextDay := visitDate.Add(24 * time.Hour)
	_, _, err = svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeVisit,
		VisitDate:  &nextDay,
		VisitSlot:  "10:00 AM",
	})
	assert.NoError(t, err)

	// Unknown slot label is a validation error, not a conflict.
	_, _, err = svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeVisit,
		VisitDate:  &visitDate,
		VisitSlot:  "11:00 AM",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingService_CreateRental_OverlapGateAndPriceSnapshot(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_rental")
	svc, repo := newBookingTestService(db)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seekerA := insertTestUser(t, db, models.RoleUser, "")
	seekerB := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 15000)

	checkIn := day("2026-10-01")
	checkOut := dayPtr("2026-10-31")
	rental, _, err := svc.Create(ctx, seekerA.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeRental,
		CheckIn:    &checkIn,
		CheckOut:   checkOut,
	})
	require.NoError(t, err)
	assert.Equal(t, 15000.0, rental.PriceQuoted)

	// A pending rental does not block: only approved ones count.
	otherIn := day("2026-10-10")
	_, _, err = svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeRental,
		CheckIn:    &otherIn,
	})
	assert.NoError(t, err)

	// Approve the first rental, then the overlap gate kicks in.
	_, err = svc.Approve(ctx, owner.ID, rental.ID)
	require.NoError(t, err)

	overlapIn := day("2026-10-15")
	_, _, err = svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeRental,
		CheckIn:    &overlapIn,
	})
	assert.ErrorIs(t, err, ErrConflict)

	// Checkout day itself still blocks (inclusive boundary).
	boundaryIn := day("2026-10-31")
	_, _, err = svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeRental,
		CheckIn:    &boundaryIn,
	})
	assert.ErrorIs(t, err, ErrConflict)

	// The day after checkout is free.
	freeIn := day("2026-11-01")
	free, _, err := svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeRental,
		CheckIn:    &freeIn,
	})
	require.NoError(t, err)

	// Reversed range is invalid.
	badOut := day("2026-09-01")
	_, _, err = svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeRental,
		CheckIn:    &checkIn,
		CheckOut:   &badOut,
	})
	assert.ErrorIs(t, err, ErrValidation)

	// Price snapshot never re-reads the property.
	stored, err := repo.FindByID(ctx, free.ID)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, stored.PriceQuoted)
}

func TestBookingService_Transitions(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_transitions")
	svc, _ := newBookingTestService(db)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	stranger := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	booking, _, err := svc.Create(ctx, seeker.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeLead,
		Message:    "interested",
	})
	require.NoError(t, err)

	// Only the owner may approve.
	_, err = svc.Approve(ctx, stranger.ID, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Approve(ctx, seeker.ID, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := svc.Approve(ctx, owner.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingApproved, approved.Status)
	assert.False(t, approved.IsReadByUser)

	// Approved cannot be rejected, only cancelled or completed.
	_, err = svc.Reject(ctx, owner.ID, booking.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrConflict)

	cancelled, err := svc.Cancel(ctx, seeker.ID, models.RoleUser, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.False(t, cancelled.IsReadByOwner)

	// Cancelled is terminal.
	_, err = svc.Approve(ctx, owner.ID, booking.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Cancel(ctx, owner.ID, models.RoleOwner, booking.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// Missing booking is a not-found, not forbidden.
	_, err = svc.Approve(ctx, owner.ID, utils.NewSixID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingService_CancelParties(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_cancel_parties")
	svc, _ := newBookingTestService(db)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	stranger := insertTestUser(t, db, models.RoleUser, "")
	admin := insertTestUser(t, db, models.RoleAdmin, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	newLead := func() *models.Booking {
		booking, _, err := svc.Create(ctx, seeker.ID, CreateBookingInput{
			PropertyID: property.ID,
			Type:       models.BookingTypeLead,
			Message:    "interested",
		})
		require.NoError(t, err)
		return booking
	}

	// A stranger cannot cancel, whatever their role claims.
	booking := newLead()
	_, err := svc.Cancel(ctx, stranger.ID, models.RoleUser, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Cancel(ctx, stranger.ID, models.RoleOwner, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// The owner may cancel; the requester's read flag flips.
	cancelled, err := svc.Cancel(ctx, owner.ID, models.RoleOwner, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.False(t, cancelled.IsReadByUser)

	// An admin may cancel a booking they are no party to.
	booking = newLead()
	cancelled, err = svc.Cancel(ctx, admin.ID, models.RoleAdmin, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
}

func TestBookingService_RejectAppendsOwnerNote(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_reject_note")
	svc, _ := newBookingTestService(db)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	booking, _, err := svc.Create(ctx, seeker.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeLead,
		Message:    "original request",
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, owner.ID, booking.ID, "already taken")
	require.NoError(t, err)
	assert.Equal(t, models.BookingRejected, rejected.Status)
	assert.Contains(t, rejected.Message, "original request")
	assert.Contains(t, rejected.Message, "Owner: already taken")
}

func TestBookingService_Reschedule(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_reschedule")
	svc, _ := newBookingTestService(db)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seekerA := insertTestUser(t, db, models.RoleUser, "")
	seekerB := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	visitDate := day("2026-09-10")
	visit, _, err := svc.Create(ctx, seekerA.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeVisit,
		VisitDate:  &visitDate,
		VisitSlot:  "10:00 AM",
	})
	require.NoError(t, err)

	// Rescheduling onto its own slot must not self-collide.
	rescheduled, err := svc.Reschedule(ctx, owner.ID, visit.ID, visitDate, "10:00 AM", "running late")
	require.NoError(t, err)
	assert.Equal(t, models.BookingRescheduled, rescheduled.Status)
	require.NotNil(t, rescheduled.Reschedule)
	assert.Equal(t, "10:00 AM", rescheduled.Reschedule.Slot)
	assert.Equal(t, "running late", rescheduled.Reschedule.Reason)

	// Owner re-approves after the reschedule.
	approved, err := svc.Approve(ctx, owner.ID, visit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingApproved, approved.Status)

	// A slot someone else holds is a conflict.
	otherDate := day("2026-09-11")
	_, _, err = svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeVisit,
		VisitDate:  &otherDate,
		VisitSlot:  "3:00 PM",
	})
	require.NoError(t, err)
	_, err = svc.Reschedule(ctx, owner.ID, visit.ID, otherDate, "3:00 PM", "")
	assert.ErrorIs(t, err, ErrConflict)

	// Leads cannot be rescheduled.
	lead, _, err := svc.Create(ctx, seekerB.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeLead,
		Message:    "hi",
	})
	require.NoError(t, err)
	_, err = svc.Reschedule(ctx, owner.ID, lead.ID, visitDate, "5:00 PM", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingService_GetByID_Authorization(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_getbyid")
	svc, _ := newBookingTestService(db)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	stranger := insertTestUser(t, db, models.RoleUser, "")
	admin := insertTestUser(t, db, models.RoleAdmin, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	booking, _, err := svc.Create(ctx, seeker.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeLead,
		Message:    "hello",
	})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, seeker.ID, models.RoleUser, booking.ID)
	assert.NoError(t, err)
	_, err = svc.GetByID(ctx, owner.ID, models.RoleOwner, booking.ID)
	assert.NoError(t, err)
	_, err = svc.GetByID(ctx, admin.ID, models.RoleAdmin, booking.ID)
	assert.NoError(t, err)
	_, err = svc.GetByID(ctx, stranger.ID, models.RoleUser, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingService_CheckDates(t *testing.T) {
	db := setupBookingTestDB(t, "testdb_booking_checkdates")
	svc, _ := newBookingTestService(db)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	checkIn := day("2026-10-01")
	checkOut := dayPtr("2026-10-31")
	rental, _, err := svc.Create(ctx, seeker.ID, CreateBookingInput{
		PropertyID: property.ID,
		Type:       models.BookingTypeRental,
		CheckIn:    &checkIn,
		CheckOut:   checkOut,
	})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, owner.ID, rental.ID)
	require.NoError(t, err)

	available, err := svc.CheckDates(ctx, property.ID, day("2026-10-15"), nil)
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.CheckDates(ctx, property.ID, day("2026-11-02"), dayPtr("2026-11-10"))
	require.NoError(t, err)
	assert.True(t, available)

	_, err = svc.CheckDates(ctx, utils.NewSixID(), day("2026-10-15"), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
