package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hariombangali/rentora-backend/internal/auth"
	"github.com/hariombangali/rentora-backend/internal/db"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

const usersCollection = "users"

// ErrEmailExists is returned when an attempt is made to use an email that
// already belongs to another account.
var ErrEmailExists = errors.New("email already in use by another account")

// IUserService defines the interface for user-related operations.
type IUserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindByID(ctx context.Context, userID utils.SixID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpgradeRole(ctx context.Context, userID utils.SixID, role models.Role) error
	SubmitOwnerKYC(ctx context.Context, userID utils.SixID, kyc *models.OwnerKYC) error
	ListPendingOwners(ctx context.Context) ([]models.User, error)
	VerifyOwner(ctx context.Context, userID utils.SixID, approve bool, reason string) error
	UpdateContact(ctx context.Context, userID utils.SixID, contact string) error
}

type userService struct {
	db *mongo.Database
}

// NewUserService creates a new UserService.
func NewUserService(database *mongo.Database) IUserService {
	return &userService{db: database}
}

func (s *userService) collection() *mongo.Collection {
	return s.db.Collection(usersCollection)
}

// Register creates a new seeker account with a hashed password.
func (s *userService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if len(password) < auth.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, auth.MinPasswordLength)
	}

	existing, err := s.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = db.Try(func() error {
		user.GenID()
		_, insertErr := s.collection().InsertOne(ctx, user)
		return insertErr
	})
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the email/password pair. A wrong password and an
// unknown email both return ErrNotFound so the response does not leak
// which accounts exist.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *userService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	var user models.User
	err := s.collection().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return &user, nil
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.collection().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (s *userService) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := s.collection().CountDocuments(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// UpgradeRole moves a user to a higher role. Downgrades and unknown
// roles are rejected.
func (s *userService) UpgradeRole(ctx context.Context, userID utils.SixID, role models.Role) error {
	if !role.Valid() || role == models.RoleGuest || role == models.RoleAdmin {
		return fmt.Errorf("%w: cannot upgrade to role %q", ErrValidation, role)
	}
	res, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to upgrade role for %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SubmitOwnerKYC records the KYC snapshot on the account, upgrades the
// role to owner and resets any prior verification verdict.
func (s *userService) SubmitOwnerKYC(ctx context.Context, userID utils.SixID, kyc *models.OwnerKYC) error {
	if kyc == nil || strings.TrimSpace(kyc.OwnerName) == "" || strings.TrimSpace(kyc.OwnerPhone) == "" {
		return fmt.Errorf("%w: owner name and phone are required", ErrValidation)
	}
	res, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"owner_kyc":              kyc,
			"role":                   models.RoleOwner,
			"owner_verified":         false,
			"owner_rejected":         false,
			"owner_rejection_reason": "",
			"updated_at":             time.Now(),
		}})
	if err != nil {
		return fmt.Errorf("failed to store owner KYC for %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPendingOwners returns owners whose KYC awaits an admin verdict.
func (s *userService) ListPendingOwners(ctx context.Context) ([]models.User, error) {
	filter := bson.M{
		"role":           models.RoleOwner,
		"owner_kyc":      bson.M{"$ne": nil},
		"owner_verified": false,
		"owner_rejected": false,
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}})
	cursor, err := s.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending owners: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// VerifyOwner records the admin verdict on an owner's KYC submission.
func (s *userService) VerifyOwner(ctx context.Context, userID utils.SixID, approve bool, reason string) error {
	set := bson.M{"updated_at": time.Now()}
	if approve {
		set["owner_verified"] = true
		set["owner_rejected"] = false
		set["owner_rejection_reason"] = ""
	} else {
		set["owner_verified"] = false
		set["owner_rejected"] = true
		set["owner_rejection_reason"] = reason
	}
	res, err := s.collection().UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to verify owner %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *userService) UpdateContact(ctx context.Context, userID utils.SixID, contact string) error {
	res, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"contact": strings.TrimSpace(contact), "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to update contact for %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
