package models

import (
	"time"

	"github.com/hariombangali/rentora-backend/internal/utils"
)

// BookingType distinguishes the four interaction kinds that share the
// bookings collection.
type BookingType string

const (
	BookingTypeLead   BookingType = "lead"
	BookingTypeVisit  BookingType = "visit"
	BookingTypeRental BookingType = "rental"
	BookingTypeReveal BookingType = "reveal"
)

func (t BookingType) Valid() bool {
	switch t {
	case BookingTypeLead, BookingTypeVisit, BookingTypeRental, BookingTypeReveal:
		return true
	}
	return false
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending     BookingStatus = "pending"
	BookingApproved    BookingStatus = "approved"
	BookingRejected    BookingStatus = "rejected"
	BookingRescheduled BookingStatus = "rescheduled"
	BookingCancelled   BookingStatus = "cancelled"
	BookingCompleted   BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected,
		BookingRescheduled, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// bookingTransitions is the allowed status graph. Terminal states have no
// outgoing edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:     {BookingApproved, BookingRejected, BookingRescheduled, BookingCancelled},
	BookingApproved:    {BookingCancelled, BookingCompleted},
	BookingRescheduled: {BookingApproved, BookingRejected, BookingCancelled},
	BookingRejected:    {},
	BookingCancelled:   {},
	BookingCompleted:   {},
}

// CanTransitionTo reports whether the status graph allows moving from s
// to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// VisitSlots is the fixed daily slot grid, in display order.
var VisitSlots = []string{"10:00 AM", "12:00 PM", "3:00 PM", "5:00 PM"}

// ValidVisitSlot reports whether slot names one of the fixed slots.
func ValidVisitSlot(slot string) bool {
	for _, s := range VisitSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Slot is the per-day availability entry returned by the calendar.
type Slot struct {
	ID     int    `json:"id"`
	Time   string `json:"time"`
	IsFull bool   `json:"isFull"`
}

// Reschedule records an owner's proposed alternative for a visit.
type Reschedule struct {
	Date   time.Time `bson:"date" json:"date"`
	Slot   string    `bson:"slot" json:"slot"`
	Reason string    `bson:"reason,omitempty" json:"reason,omitempty"`
}

// PaymentInfo is a snapshot of a rental payment attached to the booking.
type PaymentInfo struct {
	Reference string    `bson:"reference" json:"reference"`
	Amount    float64   `bson:"amount" json:"amount"`
	PaidAt    time.Time `bson:"paid_at" json:"paidAt"`
}

// Booking is a seeker's interaction with a property: an enquiry (lead),
// a scheduled visit, a stay reservation (rental) or a paid contact reveal.
type Booking struct {
	Base          `bson:",inline"`
	PropertyID    utils.SixID   `bson:"property" json:"property"`
	UserID        utils.SixID   `bson:"user" json:"user"`
	OwnerID       utils.SixID   `bson:"owner" json:"owner"`
	Type          BookingType   `bson:"type" json:"type"`
	Status        BookingStatus `bson:"status" json:"status"`
	Message       string        `bson:"message,omitempty" json:"message,omitempty"`
	VisitDate     *time.Time    `bson:"visit_date,omitempty" json:"visitDate,omitempty"`
	VisitSlot     string        `bson:"visit_slot,omitempty" json:"visitSlot,omitempty"`
	Reschedule    *Reschedule   `bson:"reschedule,omitempty" json:"reschedule,omitempty"`
	CheckIn       *time.Time    `bson:"check_in,omitempty" json:"checkIn,omitempty"`
	CheckOut      *time.Time    `bson:"check_out,omitempty" json:"checkOut,omitempty"`
	PriceQuoted   float64       `bson:"price_quoted,omitempty" json:"priceQuoted,omitempty"`
	Paid          bool          `bson:"paid" json:"paid"`
	PaymentInfo   *PaymentInfo  `bson:"payment_info,omitempty" json:"paymentInfo,omitempty"`
	IsReadByOwner bool          `bson:"is_read_by_owner" json:"isReadByOwner"`
	IsReadByUser  bool          `bson:"is_read_by_user" json:"isReadByUser"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}
