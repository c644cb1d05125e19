package models

import (
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// IBase is implemented by every persisted document through an embedded
// Base, letting repositories assign ids without knowing the concrete type.
type IBase interface {
	GenIDIfEmpty()
	GenID()
	SetID(id utils.SixID)
}

// Base carries the SixID primary key embedded inline in every document
// (User, Property, Booking, Message, Testimonial).
type Base struct {
	ID utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
}

// GenIDIfEmpty assigns a fresh id only when none is set, so callers can
// pre-assign ids in tests.
func (m *Base) GenIDIfEmpty() {
	if m.ID == (utils.SixID{}) {
		m.GenID()
	}
}

// GenID assigns a fresh random id. Insert paths call this inside db.Try
// so a duplicate-key collision just regenerates.
func (m *Base) GenID() {
	m.ID = utils.NewSixID()
}

// SetID overwrites the id.
func (m *Base) SetID(id utils.SixID) {
	m.ID = id
}

// NewBase returns a Base with an id already assigned, for documents
// inserted directly rather than through a repository.
func NewBase() Base {
	return Base{
		ID: utils.NewSixID(),
	}
}
