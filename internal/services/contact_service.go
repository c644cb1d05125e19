package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// QuotaStatus describes a user's remaining reveal allowance for the
// current calendar month, with the target owner's phone masked.
type QuotaStatus struct {
	Used        int    `json:"used"`
	Remaining   int    `json:"remainingFreeContacts"`
	CanReveal   bool   `json:"canReveal"`
	MaskedPhone string `json:"maskedPhone,omitempty"`
}

// RevealResult is the outcome of a reveal attempt. LimitReached true
// means the quota gate refused; this is a soft outcome, not an error.
type RevealResult struct {
	LimitReached bool   `json:"limitReached"`
	Phone        string `json:"phone,omitempty"`
	Remaining    int    `json:"remainingFreeContacts"`
	Message      string `json:"message"`
}

// IContactService gates owner phone-number disclosure behind a monthly
// free-reveal quota, recording each consumed reveal in the bookings
// collection.
type IContactService interface {
	Quota(ctx context.Context, userID utils.SixID, ownerID *utils.SixID) (*QuotaStatus, error)
	Reveal(ctx context.Context, userID, ownerID, propertyID utils.SixID) (*RevealResult, error)
}

type contactService struct {
	repo      IBookingRepository
	users     IUserService
	props     IPropertyService
	allowance int
}

// NewContactService creates a contact service with the given monthly
// free-reveal allowance.
func NewContactService(repo IBookingRepository, users IUserService, props IPropertyService, allowance int) IContactService {
	if allowance <= 0 {
		allowance = 3
	}
	return &contactService{repo: repo, users: users, props: props, allowance: allowance}
}

// monthStart returns UTC midnight on the first day of now's month.
func monthStart(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ownerPhone resolves the contact phone for an owner, preferring the KYC
// record over the account contact field.
func (s *contactService) ownerPhone(ctx context.Context, ownerID utils.SixID) (string, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if owner.OwnerKYC != nil && owner.OwnerKYC.OwnerPhone != "" {
		return owner.OwnerKYC.OwnerPhone, nil
	}
	return owner.Contact, nil
}

func (s *contactService) used(ctx context.Context, userID utils.SixID) (int, error) {
	count, err := s.repo.CountRevealsSince(ctx, userID, monthStart(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to count reveals this month: %w", err)
	}
	return int(count), nil
}

// Quota reports the caller's reveal allowance for the current month. When
// ownerID is given the response carries that owner's masked phone.
func (s *contactService) Quota(ctx context.Context, userID utils.SixID, ownerID *utils.SixID) (*QuotaStatus, error) {
	used, err := s.used(ctx, userID)
	if err != nil {
		return nil, err
	}
	remaining := s.allowance - used
	if remaining < 0 {
		remaining = 0
	}
	status := &QuotaStatus{
		Used:      used,
		Remaining: remaining,
		CanReveal: used < s.allowance,
	}
	if ownerID != nil {
		phone, err := s.ownerPhone(ctx, *ownerID)
		if err != nil {
			return nil, err
		}
		status.MaskedPhone = utils.MaskPhone(phone)
	}
	return status, nil
}

// Reveal consumes one unit of quota and returns the owner's full phone
// number, recording a completed reveal booking as the usage ledger entry.
// An exhausted quota returns LimitReached without an error.
func (s *contactService) Reveal(ctx context.Context, userID, ownerID, propertyID utils.SixID) (*RevealResult, error) {
	property, err := s.props.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.UserID == userID {
		return nil, fmt.Errorf("%w: cannot reveal your own contact", ErrValidation)
	}

	used, err := s.used(ctx, userID)
	if err != nil {
		return nil, err
	}
	if used >= s.allowance {
		return &RevealResult{
			LimitReached: true,
			Remaining:    0,
			Message:      "Free contact limit reached for this month",
		}, nil
	}

	phone, err := s.ownerPhone(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ledger := &models.Booking{
		PropertyID:    propertyID,
		UserID:        userID,
		OwnerID:       ownerID,
		Type:          models.BookingTypeReveal,
		Status:        models.BookingCompleted,
		IsReadByOwner: false,
		IsReadByUser:  true,
	}
	if err := s.repo.Insert(ctx, ledger); err != nil {
		return nil, err
	}

	remaining := s.allowance - used - 1
	if remaining < 0 {
		remaining = 0
	}
	return &RevealResult{
		Phone:     phone,
		Remaining: remaining,
		Message:   "Contact revealed",
	}, nil
}
