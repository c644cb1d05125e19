package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// IBookingNotifier enqueues an out-of-band notification about a booking
// event. Implementations must not block the request path on delivery.
type IBookingNotifier interface {
	NotifyBookingEvent(bookingID utils.SixID, event string) error
}

// CreateBookingInput is the normalized payload for creating a booking.
// Handlers resolve client field aliases before calling the service.
type CreateBookingInput struct {
	PropertyID utils.SixID
	Type       models.BookingType
	Message    string
	VisitDate  *time.Time
	VisitSlot  string
	CheckIn    *time.Time
	CheckOut   *time.Time
}

// IBookingService owns the booking lifecycle: creation with per-type
// validation and the owner/party status transitions.
type IBookingService interface {
	Create(ctx context.Context, requesterID utils.SixID, input CreateBookingInput) (*models.Booking, string, error)
	GetByID(ctx context.Context, callerID utils.SixID, role models.Role, bookingID utils.SixID) (*models.Booking, error)
	ListForRequester(ctx context.Context, userID utils.SixID) ([]models.Booking, error)
	ListForOwner(ctx context.Context, ownerID utils.SixID, status models.BookingStatus) ([]models.Booking, error)
	Approve(ctx context.Context, ownerID utils.SixID, bookingID utils.SixID) (*models.Booking, error)
	Reject(ctx context.Context, ownerID utils.SixID, bookingID utils.SixID, reason string) (*models.Booking, error)
	Reschedule(ctx context.Context, ownerID utils.SixID, bookingID utils.SixID, newDate time.Time, newSlot, reason string) (*models.Booking, error)
	Cancel(ctx context.Context, callerID utils.SixID, role models.Role, bookingID utils.SixID) (*models.Booking, error)
	CheckDates(ctx context.Context, propertyID utils.SixID, start time.Time, end *time.Time) (bool, error)
}

type bookingService struct {
	repo     IBookingRepository
	props    IPropertyService
	calendar ISlotCalendar
	overlap  IOverlapChecker
	notifier IBookingNotifier
}

// NewBookingService wires the booking service. notifier may be nil, in
// which case events are only logged.
func NewBookingService(repo IBookingRepository, props IPropertyService, calendar ISlotCalendar, overlap IOverlapChecker, notifier IBookingNotifier) IBookingService {
	return &bookingService{
		repo:     repo,
		props:    props,
		calendar: calendar,
		overlap:  overlap,
		notifier: notifier,
	}
}

func (s *bookingService) notify(bookingID utils.SixID, event string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyBookingEvent(bookingID, event); err != nil {
		// Notification failure never fails the booking operation.
		log.Printf("Failed to enqueue booking notification %s for %s: %v", event, bookingID, err)
	}
}

// Create validates and persists a new booking of any non-reveal type.
// The returned string is the human-readable outcome message, which
// differs when an existing lead was merged instead of duplicated.
func (s *bookingService) Create(ctx context.Context, requesterID utils.SixID, input CreateBookingInput) (*models.Booking, string, error) {
	if !input.Type.Valid() || input.Type == models.BookingTypeReveal {
		return nil, "", fmt.Errorf("%w: invalid booking type %q", ErrValidation, input.Type)
	}

	property, err := s.props.FindByID(ctx, input.PropertyID)
	if err != nil {
		return nil, "", err
	}
	if property.UserID == requesterID {
		return nil, "", fmt.Errorf("%w: cannot book your own property", ErrValidation)
	}

	booking := &models.Booking{
		PropertyID:    input.PropertyID,
		UserID:        requesterID,
		OwnerID:       property.UserID,
		Type:          input.Type,
		Status:        models.BookingPending,
		Message:       strings.TrimSpace(input.Message),
		IsReadByOwner: false,
		IsReadByUser:  true,
	}

	var outcome string

	switch input.Type {
	case models.BookingTypeLead:
		if booking.Message == "" {
			return nil, "", fmt.Errorf("%w: message is required for a lead", ErrValidation)
		}
		existing, err := s.repo.FindActiveLead(ctx, requesterID, input.PropertyID)
		if err != nil {
			return nil, "", err
		}
		if existing != nil {
			// Merge into the open lead instead of duplicating it.
			existing.Message = existing.Message + "\n" + booking.Message
			existing.IsReadByOwner = false
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, "", err
			}
			s.notify(existing.ID, "lead_updated")
			return existing, "Lead updated", nil
		}
		outcome = "Lead created"

	case models.BookingTypeVisit:
		if input.VisitDate == nil {
			return nil, "", fmt.Errorf("%w: visit date is required", ErrValidation)
		}
		if !models.ValidVisitSlot(input.VisitSlot) {
			return nil, "", fmt.Errorf("%w: invalid visit slot %q", ErrValidation, input.VisitSlot)
		}
		day := DayStart(*input.VisitDate)
		full, err := s.calendar.IsSlotFull(ctx, input.PropertyID, day, input.VisitSlot, nil)
		if err != nil {
			return nil, "", err
		}
		if full {
			return nil, "", fmt.Errorf("%w: slot %s is already booked on %s", ErrConflict, input.VisitSlot, day.Format("2006-01-02"))
		}
		booking.VisitDate = &day
		booking.VisitSlot = input.VisitSlot
		outcome = "Visit requested"

	case models.BookingTypeRental:
		if input.CheckIn == nil {
			return nil, "", fmt.Errorf("%w: check-in date is required", ErrValidation)
		}
		if input.CheckOut != nil && input.CheckOut.Before(*input.CheckIn) {
			return nil, "", fmt.Errorf("%w: check-out cannot precede check-in", ErrValidation)
		}
		overlapping, err := s.overlap.HasApprovedOverlap(ctx, input.PropertyID, *input.CheckIn, input.CheckOut)
		if err != nil {
			return nil, "", err
		}
		if overlapping {
			return nil, "", fmt.Errorf("%w: property is already rented for the requested dates", ErrConflict)
		}
		booking.CheckIn = input.CheckIn
		booking.CheckOut = input.CheckOut
		booking.PriceQuoted = property.Price
		outcome = "Rental request created"
	}

	if err := s.repo.Insert(ctx, booking); err != nil {
		return nil, "", err
	}
	s.notify(booking.ID, "created")
	return booking, outcome, nil
}

// GetByID returns a booking visible to the caller: requester, owner or
// admin.
func (s *bookingService) GetByID(ctx context.Context, callerID utils.SixID, role models.Role, bookingID utils.SixID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != callerID && booking.OwnerID != callerID && !role.IsAdmin() {
		return nil, fmt.Errorf("%w: not a party to this booking", ErrForbidden)
	}
	return booking, nil
}

func (s *bookingService) ListForRequester(ctx context.Context, userID utils.SixID) ([]models.Booking, error) {
	return s.repo.FindByRequester(ctx, userID)
}

func (s *bookingService) ListForOwner(ctx context.Context, ownerID utils.SixID, status models.BookingStatus) ([]models.Booking, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status filter %q", ErrValidation, status)
	}
	return s.repo.FindByOwner(ctx, ownerID, status)
}

// loadForOwner loads the booking and verifies the caller owns it.
func (s *bookingService) loadForOwner(ctx context.Context, ownerID, bookingID utils.SixID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: only the property owner may do this", ErrForbidden)
	}
	return booking, nil
}

func transitionErr(from, to models.BookingStatus) error {
	return fmt.Errorf("%w: cannot move booking from %s to %s", ErrConflict, from, to)
}

// Approve sets the booking approved. No availability re-check happens
// here; the create-time gate is the only one.
func (s *bookingService) Approve(ctx context.Context, ownerID utils.SixID, bookingID utils.SixID) (*models.Booking, error) {
	booking, err := s.loadForOwner(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(models.BookingApproved) {
		return nil, transitionErr(booking.Status, models.BookingApproved)
	}
	booking.Status = models.BookingApproved
	booking.IsReadByUser = false
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}
	s.notify(booking.ID, "approved")
	return booking, nil
}

// Reject sets the booking rejected, appending the owner's reason to the
// message so the original request text is preserved.
func (s *bookingService) Reject(ctx context.Context, ownerID utils.SixID, bookingID utils.SixID, reason string) (*models.Booking, error) {
	booking, err := s.loadForOwner(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(models.BookingRejected) {
		return nil, transitionErr(booking.Status, models.BookingRejected)
	}
	booking.Status = models.BookingRejected
	if reason = strings.TrimSpace(reason); reason != "" {
		note := "Owner: " + reason
		if booking.Message != "" {
			booking.Message = booking.Message + "\n" + note
		} else {
			booking.Message = note
		}
	}
	booking.IsReadByUser = false
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}
	s.notify(booking.ID, "rejected")
	return booking, nil
}

// Reschedule proposes a new date and slot for a visit. The capacity check
// excludes the booking itself so a visit never collides with its own slot.
func (s *bookingService) Reschedule(ctx context.Context, ownerID utils.SixID, bookingID utils.SixID, newDate time.Time, newSlot, reason string) (*models.Booking, error) {
	booking, err := s.loadForOwner(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Type != models.BookingTypeVisit {
		return nil, fmt.Errorf("%w: only visits can be rescheduled", ErrValidation)
	}
	if !models.ValidVisitSlot(newSlot) {
		return nil, fmt.Errorf("%w: invalid visit slot %q", ErrValidation, newSlot)
	}
	if !booking.Status.CanTransitionTo(models.BookingRescheduled) {
		return nil, transitionErr(booking.Status, models.BookingRescheduled)
	}

	day := DayStart(newDate)
	full, err := s.calendar.IsSlotFull(ctx, booking.PropertyID, day, newSlot, &booking.ID)
	if err != nil {
		return nil, err
	}
	if full {
		return nil, fmt.Errorf("%w: slot %s is already booked on %s", ErrConflict, newSlot, day.Format("2006-01-02"))
	}

	booking.Status = models.BookingRescheduled
	booking.Reschedule = &models.Reschedule{
		Date:   day,
		Slot:   newSlot,
		Reason: strings.TrimSpace(reason),
	}
	booking.IsReadByUser = false
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}
	s.notify(booking.ID, "rescheduled")
	return booking, nil
}

// Cancel moves the booking to cancelled. Either party or an admin may
// cancel from any non-terminal state. The read flag of the other party
// flips so they see the change.
func (s *bookingService) Cancel(ctx context.Context, callerID utils.SixID, role models.Role, bookingID utils.SixID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	isRequester := booking.UserID == callerID
	isOwner := booking.OwnerID == callerID
	if !isRequester && !isOwner && !role.IsAdmin() {
		return nil, fmt.Errorf("%w: not a party to this booking", ErrForbidden)
	}
	if !booking.Status.CanTransitionTo(models.BookingCancelled) {
		return nil, transitionErr(booking.Status, models.BookingCancelled)
	}
	booking.Status = models.BookingCancelled
	if isRequester {
		booking.IsReadByOwner = false
	} else {
		booking.IsReadByUser = false
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}
	s.notify(booking.ID, "cancelled")
	return booking, nil
}

// CheckDates reports whether the property is free of approved rentals for
// the range. A nil end probes the single day of start.
func (s *bookingService) CheckDates(ctx context.Context, propertyID utils.SixID, start time.Time, end *time.Time) (bool, error) {
	if _, err := s.props.FindByID(ctx, propertyID); err != nil {
		return false, err
	}
	overlapping, err := s.overlap.HasApprovedOverlap(ctx, propertyID, start, end)
	if err != nil {
		return false, err
	}
	return !overlapping, nil
}
