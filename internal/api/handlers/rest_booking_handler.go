package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/services"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// RestBookingHandler handles REST requests for bookings.
type RestBookingHandler struct {
	bookingService services.IBookingService
	calendar       services.ISlotCalendar
}

// NewRestBookingHandler creates a new RestBookingHandler.
func NewRestBookingHandler(bookingService services.IBookingService, calendar services.ISlotCalendar) *RestBookingHandler {
	return &RestBookingHandler{
		bookingService: bookingService,
		calendar:       calendar,
	}
}

// createBookingRequest accepts the field aliases different clients send
// for the same value. normalize resolves them once so the service only
// sees canonical names.
type createBookingRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	Type       string `json:"type"`
	Message    string `json:"message"`
	Note       string `json:"note"`
	VisitDate  string `json:"visitDate"`
	Date       string `json:"date"`
	VisitSlot  string `json:"visitSlot"`
	Slot       string `json:"slot"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
}

func (r *createBookingRequest) normalize() {
	if r.Message == "" {
		r.Message = r.Note
	}
	if r.VisitDate == "" {
		r.VisitDate = r.Date
	}
	if r.VisitSlot == "" {
		r.VisitSlot = r.Slot
	}
}

func (r *createBookingRequest) toInput() (services.CreateBookingInput, error) {
	r.normalize()

	propertyID, err := utils.ParseSixID(r.PropertyID)
	if err != nil {
		return services.CreateBookingInput{}, err
	}

	input := services.CreateBookingInput{
		PropertyID: propertyID,
		Type:       models.BookingType(r.Type),
		Message:    r.Message,
		VisitSlot:  r.VisitSlot,
	}

	if r.VisitDate != "" {
		t, err := parseDate(r.VisitDate)
		if err != nil {
			return services.CreateBookingInput{}, err
		}
		input.VisitDate = &t
	}
	if r.CheckIn != "" {
		t, err := parseDate(r.CheckIn)
		if err != nil {
			return services.CreateBookingInput{}, err
		}
		input.CheckIn = &t
	}
	if r.CheckOut != "" {
		t, err := parseDate(r.CheckOut)
		if err != nil {
			return services.CreateBookingInput{}, err
		}
		input.CheckOut = &t
	}
	return input, nil
}

// CreateBooking handles POST /v1/bookings.
func (h *RestBookingHandler) CreateBooking(c *gin.Context) {
	h.create(c, "")
}

// CreateLead handles POST /v1/leads, a type-fixed alias of create.
func (h *RestBookingHandler) CreateLead(c *gin.Context) {
	h.create(c, models.BookingTypeLead)
}

// CreateVisit handles POST /v1/visits, a type-fixed alias of create.
func (h *RestBookingHandler) CreateVisit(c *gin.Context) {
	h.create(c, models.BookingTypeVisit)
}

func (h *RestBookingHandler) create(c *gin.Context, fixedType models.BookingType) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	if fixedType != "" {
		req.Type = string(fixedType)
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	booking, outcome, err := h.bookingService.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if outcome == "Lead updated" {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"message": outcome, "booking": booking})
}

// MyBookings handles GET /v1/bookings/my.
func (h *RestBookingHandler) MyBookings(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookings, err := h.bookingService.ListForRequester(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// OwnerBookings handles GET /v1/bookings/owner?status=.
func (h *RestBookingHandler) OwnerBookings(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	status := models.BookingStatus(c.Query("status"))
	bookings, err := h.bookingService.ListForOwner(c.Request.Context(), userID, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking handles GET /v1/bookings/:id.
func (h *RestBookingHandler) GetBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookingService.GetByID(c.Request.Context(), userID, callerRole(c), bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ApproveBooking handles PATCH /v1/bookings/:id/approve.
func (h *RestBookingHandler) ApproveBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookingService.Approve(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking approved", "booking": booking})
}

// RejectBooking handles PATCH /v1/bookings/:id/reject.
func (h *RestBookingHandler) RejectBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for reject.
	_ = c.ShouldBindJSON(&req)

	booking, err := h.bookingService.Reject(c.Request.Context(), userID, bookingID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking rejected", "booking": booking})
}

// RescheduleBooking handles PATCH /v1/bookings/:id/reschedule.
func (h *RestBookingHandler) RescheduleBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Date   string `json:"date" binding:"required"`
		Slot   string `json:"slot" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	newDate, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	}

	booking, err := h.bookingService.Reschedule(c.Request.Context(), userID, bookingID, newDate, req.Slot, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Visit rescheduled", "booking": booking})
}

// CancelBooking handles PATCH /v1/bookings/:id/cancel.
func (h *RestBookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookingService.Cancel(c.Request.Context(), userID, callerRole(c), bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": booking})
}

// Availability handles GET /v1/bookings/availability?propertyId&date and
// its alias GET /v1/visits/availability.
func (h *RestBookingHandler) Availability(c *gin.Context) {
	propertyID, err := utils.ParseSixID(c.Query("propertyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid propertyId"})
		return
	}
	day, err := parseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	}

	slots, err := h.calendar.Availability(c.Request.Context(), propertyID, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": services.DayStart(day).Format("2006-01-02"), "slots": slots})
}

// CheckDates handles GET /v1/bookings/check-dates/:propertyId?start&end.
func (h *RestBookingHandler) CheckDates(c *gin.Context) {
	propertyID, ok := pathID(c, "propertyId")
	if !ok {
		return
	}
	start, err := parseDate(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date"})
		return
	}
	var end *time.Time
	if endStr := c.Query("end"); endStr != "" {
		t, err := parseDate(endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date"})
			return
		}
		end = &t
	}

	available, err := h.bookingService.CheckDates(c.Request.Context(), propertyID, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}
