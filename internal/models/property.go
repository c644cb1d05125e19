package models

import (
	"time"

	"github.com/hariombangali/rentora-backend/internal/utils"
)

// PropertyType is the closed set of listing categories.
type PropertyType string

const (
	PropertyType1BHK   PropertyType = "1BHK"
	PropertyType2BHK   PropertyType = "2BHK"
	PropertyTypeStudio PropertyType = "Studio"
	PropertyTypePG     PropertyType = "PG"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyType1BHK, PropertyType2BHK, PropertyTypeStudio, PropertyTypePG:
		return true
	}
	return false
}

// PropertyLocation is the embedded address block.
type PropertyLocation struct {
	City     string `bson:"city" json:"city"`
	Locality string `bson:"locality,omitempty" json:"locality,omitempty"`
	Address  string `bson:"address" json:"address"`
	Pincode  string `bson:"pincode" json:"pincode"`
}

// Property is a rentable listing. New listings start unapproved and become
// visible to seekers only after admin moderation.
type Property struct {
	Base            `bson:",inline"`
	UserID          utils.SixID      `bson:"user" json:"user"`
	Title           string           `bson:"title" json:"title"`
	Description     string           `bson:"description" json:"description"`
	Price           float64          `bson:"price" json:"price"`
	Deposit         float64          `bson:"deposit" json:"deposit"`
	Type            PropertyType     `bson:"type" json:"type"`
	Furnishing      string           `bson:"furnishing" json:"furnishing"`
	Location        PropertyLocation `bson:"location" json:"location"`
	Tenants         string           `bson:"tenants" json:"tenants"`
	AvailableFrom   *time.Time       `bson:"available_from,omitempty" json:"availableFrom,omitempty"`
	Amenities       []string         `bson:"amenities" json:"amenities"`
	Images          []string         `bson:"images" json:"images"`
	Approved        bool             `bson:"approved" json:"approved"`
	Rejected        bool             `bson:"rejected" json:"rejected"`
	RejectionReason string           `bson:"rejection_reason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `bson:"updated_at" json:"updatedAt"`
}
