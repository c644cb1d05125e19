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

	"github.com/hariombangali/rentora-backend/internal/db"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

const propertiesCollection = "properties"

// PropertySearch is the filter set for the public listing search.
type PropertySearch struct {
	City       string
	Type       models.PropertyType
	Furnishing string
	MinPrice   float64
	MaxPrice   float64
	Query      string
	Limit      int64
	Skip       int64
}

// IPropertyService manages listings: creation with owner KYC capture,
// public search over approved listings, and admin moderation.
type IPropertyService interface {
	FindByID(ctx context.Context, id utils.SixID) (*models.Property, error)
	Create(ctx context.Context, ownerID utils.SixID, property *models.Property, kyc *models.OwnerKYC) (*models.Property, error)
	Update(ctx context.Context, ownerID utils.SixID, role models.Role, property *models.Property) error
	Search(ctx context.Context, filter PropertySearch) ([]models.Property, error)
	ListByOwner(ctx context.Context, ownerID utils.SixID) ([]models.Property, error)
	ListPending(ctx context.Context) ([]models.Property, error)
	Moderate(ctx context.Context, propertyID utils.SixID, approve bool, reason string) (*models.Property, error)
	AttachImages(ctx context.Context, ownerID utils.SixID, propertyID utils.SixID, keys []string) (*models.Property, error)
	Featured(ctx context.Context, limit int64) ([]models.Property, error)
}

type propertyService struct {
	db    *mongo.Database
	users IUserService
}

// NewPropertyService creates a property service on the given database.
func NewPropertyService(database *mongo.Database, users IUserService) IPropertyService {
	return &propertyService{db: database, users: users}
}

func (s *propertyService) collection() *mongo.Collection {
	return s.db.Collection(propertiesCollection)
}

func (s *propertyService) FindByID(ctx context.Context, id utils.SixID) (*models.Property, error) {
	var property models.Property
	err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find property %s: %w", id, err)
	}
	return &property, nil
}

// Create validates and stores a new listing, pending moderation. A KYC
// block on the first listing upgrades the poster to owner and records the
// KYC snapshot on their account.
func (s *propertyService) Create(ctx context.Context, ownerID utils.SixID, property *models.Property, kyc *models.OwnerKYC) (*models.Property, error) {
	if strings.TrimSpace(property.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !property.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid property type %q", ErrValidation, property.Type)
	}
	if property.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if strings.TrimSpace(property.Location.City) == "" {
		return nil, fmt.Errorf("%w: city is required", ErrValidation)
	}

	property.UserID = ownerID
	property.Approved = false
	property.Rejected = false
	property.RejectionReason = ""
	now := time.Now()
	property.CreatedAt = now
	property.UpdatedAt = now

	err := db.Try(func() error {
		property.GenID()
		_, insertErr := s.collection().InsertOne(ctx, property)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert property: %w", err)
	}

	if kyc != nil {
		if err := s.users.SubmitOwnerKYC(ctx, ownerID, kyc); err != nil {
			return nil, err
		}
	}
	return property, nil
}

// Update replaces a listing's editable fields. Only the owner or an
// admin may update; any edit sends the listing back to moderation.
func (s *propertyService) Update(ctx context.Context, callerID utils.SixID, role models.Role, property *models.Property) error {
	existing, err := s.FindByID(ctx, property.ID)
	if err != nil {
		return err
	}
	if existing.UserID != callerID && !role.IsAdmin() {
		return fmt.Errorf("%w: only the owner may edit this listing", ErrForbidden)
	}
	if !property.Type.Valid() {
		return fmt.Errorf("%w: invalid property type %q", ErrValidation, property.Type)
	}

	update := bson.M{"$set": bson.M{
		"title":          property.Title,
		"description":    property.Description,
		"price":          property.Price,
		"deposit":        property.Deposit,
		"type":           property.Type,
		"furnishing":     property.Furnishing,
		"location":       property.Location,
		"tenants":        property.Tenants,
		"available_from": property.AvailableFrom,
		"amenities":      property.Amenities,
		"approved":       false,
		"rejected":       false,
		"updated_at":     time.Now(),
	}}
	_, err = s.collection().UpdateOne(ctx, bson.M{"_id": property.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update property %s: %w", property.ID, err)
	}
	return nil
}

// Search returns approved listings matching the filter, newest first.
func (s *propertyService) Search(ctx context.Context, filter PropertySearch) ([]models.Property, error) {
	query := bson.M{"approved": true}
	if filter.City != "" {
		query["location.city"] = bson.M{"$regex": filter.City, "$options": "i"}
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Furnishing != "" {
		query["furnishing"] = filter.Furnishing
	}
	price := bson.M{}
	if filter.MinPrice > 0 {
		price["$gte"] = filter.MinPrice
	}
	if filter.MaxPrice > 0 {
		price["$lte"] = filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	if filter.Query != "" {
		query["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": filter.Query, "$options": "i"}},
			bson.M{"location.locality": bson.M{"$regex": filter.Query, "$options": "i"}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	if filter.Skip > 0 {
		opts.SetSkip(filter.Skip)
	}

	cursor, err := s.collection().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

func (s *propertyService) ListByOwner(ctx context.Context, ownerID utils.SixID) ([]models.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection().Find(ctx, bson.M{"user": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties for owner %s: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

// ListPending returns listings awaiting moderation, oldest first.
func (s *propertyService) ListPending(ctx context.Context) ([]models.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.collection().Find(ctx, bson.M{"approved": false, "rejected": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

// Moderate approves or rejects a pending listing.
func (s *propertyService) Moderate(ctx context.Context, propertyID utils.SixID, approve bool, reason string) (*models.Property, error) {
	property, err := s.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now()}
	if approve {
		set["approved"] = true
		set["rejected"] = false
		set["rejection_reason"] = ""
		property.Approved = true
		property.Rejected = false
		property.RejectionReason = ""
	} else {
		set["approved"] = false
		set["rejected"] = true
		set["rejection_reason"] = reason
		property.Approved = false
		property.Rejected = true
		property.RejectionReason = reason
	}
	_, err = s.collection().UpdateOne(ctx, bson.M{"_id": propertyID}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to moderate property %s: %w", propertyID, err)
	}
	return property, nil
}

// AttachImages appends uploaded image keys to the listing.
func (s *propertyService) AttachImages(ctx context.Context, callerID utils.SixID, propertyID utils.SixID, keys []string) (*models.Property, error) {
	property, err := s.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.UserID != callerID {
		return nil, fmt.Errorf("%w: only the owner may add images", ErrForbidden)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no image keys supplied", ErrValidation)
	}

	update := bson.M{
		"$push": bson.M{"images": bson.M{"$each": keys}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	_, err = s.collection().UpdateOne(ctx, bson.M{"_id": propertyID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to attach images to %s: %w", propertyID, err)
	}
	property.Images = append(property.Images, keys...)
	return property, nil
}

// Featured returns the newest approved listings for the home page.
func (s *propertyService) Featured(ctx context.Context, limit int64) ([]models.Property, error) {
	if limit <= 0 {
		limit = 6
	}
	return s.Search(ctx, PropertySearch{Limit: limit})
}
