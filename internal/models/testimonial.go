package models

import (
	"time"

	"github.com/hariombangali/rentora-backend/internal/utils"
)

// Testimonial is user feedback shown on the home page after admin approval.
type Testimonial struct {
	Base      `bson:",inline"`
	UserID    utils.SixID `bson:"user" json:"user"`
	Name      string      `bson:"name" json:"name"`
	Text      string      `bson:"text" json:"text"`
	Rating    int         `bson:"rating" json:"rating"`
	Approved  bool        `bson:"approved" json:"approved"`
	CreatedAt time.Time   `bson:"created_at" json:"createdAt"`
}
