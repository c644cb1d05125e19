package handlers_test

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/hariombangali/rentora-backend/internal/api/middleware"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/services"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// asUser simulates AuthMiddleware for tests: it stamps the caller's
// identity and role into the context.
func asUser(userID utils.SixID, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID.String())
		c.Set(middleware.ContextKeyRole, role)
		c.Next()
	}
}

// --- Mocks ---

// MockBookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, requesterID utils.SixID, input services.CreateBookingInput) (*models.Booking, string, error) {
	args := m.Called(ctx, requesterID, input)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.Booking), args.String(1), args.Error(2)
}

func (m *MockBookingService) GetByID(ctx context.Context, callerID utils.SixID, role models.Role, bookingID utils.SixID) (*models.Booking, error) {
	args := m.Called(ctx, callerID, role, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) ListForRequester(ctx context.Context, userID utils.SixID) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingService) ListForOwner(ctx context.Context, ownerID utils.SixID, status models.BookingStatus) ([]models.Booking, error) {
	args := m.Called(ctx, ownerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingService) Approve(ctx context.Context, ownerID utils.SixID, bookingID utils.SixID) (*models.Booking, error) {
	args := m.Called(ctx, ownerID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) Reject(ctx context.Context, ownerID utils.SixID, bookingID utils.SixID, reason string) (*models.Booking, error) {
	args := m.Called(ctx, ownerID, bookingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) Reschedule(ctx context.Context, ownerID utils.SixID, bookingID utils.SixID, newDate time.Time, newSlot, reason string) (*models.Booking, error) {
	args := m.Called(ctx, ownerID, bookingID, newDate, newSlot, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, callerID utils.SixID, role models.Role, bookingID utils.SixID) (*models.Booking, error) {
	args := m.Called(ctx, callerID, role, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) CheckDates(ctx context.Context, propertyID utils.SixID, start time.Time, end *time.Time) (bool, error) {
	args := m.Called(ctx, propertyID, start, end)
	return args.Bool(0), args.Error(1)
}

// MockSlotCalendar
type MockSlotCalendar struct {
	mock.Mock
}

func (m *MockSlotCalendar) Availability(ctx context.Context, propertyID utils.SixID, day time.Time) ([]models.Slot, error) {
	args := m.Called(ctx, propertyID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Slot), args.Error(1)
}

func (m *MockSlotCalendar) IsSlotFull(ctx context.Context, propertyID utils.SixID, day time.Time, slot string, exclude *utils.SixID) (bool, error) {
	args := m.Called(ctx, propertyID, day, slot, exclude)
	return args.Bool(0), args.Error(1)
}

// MockContactService
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Quota(ctx context.Context, userID utils.SixID, ownerID *utils.SixID) (*services.QuotaStatus, error) {
	args := m.Called(ctx, userID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.QuotaStatus), args.Error(1)
}

func (m *MockContactService) Reveal(ctx context.Context, userID, ownerID, propertyID utils.SixID) (*services.RevealResult, error) {
	args := m.Called(ctx, userID, ownerID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RevealResult), args.Error(1)
}
