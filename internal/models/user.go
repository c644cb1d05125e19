package models

import (
	"time"

	"github.com/hariombangali/rentora-backend/internal/utils"
)

// Role is the closed set of caller roles carried in JWT claims and checked
// at every authorization point.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r grants administrative access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// OwnerKYC holds the identity details an owner submits with their first
// property. It is a snapshot on the user record; admin verification flags
// live alongside it on User.
type OwnerKYC struct {
	OwnerName               string `bson:"owner_name" json:"ownerName"`
	OwnerEmail              string `bson:"owner_email" json:"ownerEmail"`
	OwnerPhone              string `bson:"owner_phone" json:"ownerPhone"`
	OwnerIDType             string `bson:"owner_id_type" json:"ownerIdType"`
	OwnerIDNumber           string `bson:"owner_id_number" json:"ownerIdNumber"`
	OwnerIDFile             string `bson:"owner_id_file,omitempty" json:"ownerIdFile,omitempty"`
	OwnershipProofType      string `bson:"ownership_proof_type,omitempty" json:"ownershipProofType,omitempty"`
	OwnershipProofDocNumber string `bson:"ownership_proof_doc_number,omitempty" json:"ownershipProofDocNumber,omitempty"`
	OwnershipProofFile      string `bson:"ownership_proof_file,omitempty" json:"ownershipProofFile,omitempty"`
}

// User represents an account: a seeker by default, upgraded to owner on
// first property post, or an admin.
type User struct {
	Base                 `bson:",inline"`
	Name                 string        `bson:"name" json:"name"`
	Email                string        `bson:"email" json:"email"`
	PasswordHash         string        `bson:"password" json:"-"`
	Contact              string        `bson:"contact,omitempty" json:"contact,omitempty"`
	Role                 Role          `bson:"role" json:"role"`
	OwnerKYC             *OwnerKYC     `bson:"owner_kyc,omitempty" json:"ownerKYC,omitempty"`
	OwnerVerified        bool          `bson:"owner_verified" json:"ownerVerified"`
	OwnerRejected        bool          `bson:"owner_rejected" json:"ownerRejected"`
	OwnerRejectionReason string        `bson:"owner_rejection_reason,omitempty" json:"ownerRejectionReason,omitempty"`
	Wishlist             []utils.SixID `bson:"wishlist,omitempty" json:"wishlist,omitempty"`
	CreatedAt            time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time     `bson:"updated_at" json:"updatedAt"`
}
