package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// IWishlistService manages a user's saved properties. The ids live on the
// user document; Add and Remove return the updated id list so the client
// can sync without a second request.
type IWishlistService interface {
	Add(ctx context.Context, userID, propertyID utils.SixID) ([]utils.SixID, error)
	Remove(ctx context.Context, userID, propertyID utils.SixID) ([]utils.SixID, error)
	List(ctx context.Context, userID utils.SixID) ([]models.Property, error)
}

type wishlistService struct {
	db    *mongo.Database
	props IPropertyService
}

// NewWishlistService creates a wishlist service on the given database.
func NewWishlistService(database *mongo.Database, props IPropertyService) IWishlistService {
	return &wishlistService{db: database, props: props}
}

func (s *wishlistService) collection() *mongo.Collection {
	return s.db.Collection(usersCollection)
}

// Add saves a property on the user's wishlist. Saving the same property
// twice is a no-op, not an error.
func (s *wishlistService) Add(ctx context.Context, userID, propertyID utils.SixID) ([]utils.SixID, error) {
	if _, err := s.props.FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	update := bson.M{
		"$addToSet": bson.M{"wishlist": propertyID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	return s.applyUpdate(ctx, userID, update)
}

// Remove takes a property off the user's wishlist. Removing an id that was
// never saved is a no-op.
func (s *wishlistService) Remove(ctx context.Context, userID, propertyID utils.SixID) ([]utils.SixID, error) {
	update := bson.M{
		"$pull": bson.M{"wishlist": propertyID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return s.applyUpdate(ctx, userID, update)
}

func (s *wishlistService) applyUpdate(ctx context.Context, userID utils.SixID, update bson.M) ([]utils.SixID, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := s.collection().FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update wishlist for user %s: %w", userID, err)
	}
	if user.Wishlist == nil {
		return []utils.SixID{}, nil
	}
	return user.Wishlist, nil
}

// List resolves the user's saved ids to property documents, in the order
// they were saved. Listings deleted since saving are silently skipped.
func (s *wishlistService) List(ctx context.Context, userID utils.SixID) ([]models.Property, error) {
	var user models.User
	err := s.collection().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	if len(user.Wishlist) == 0 {
		return []models.Property{}, nil
	}

	cursor, err := s.db.Collection(propertiesCollection).Find(ctx, bson.M{"_id": bson.M{"$in": user.Wishlist}})
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist properties for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var found []models.Property
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist properties: %w", err)
	}

	byID := make(map[utils.SixID]models.Property, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	properties := make([]models.Property, 0, len(found))
	for _, id := range user.Wishlist {
		if p, ok := byID[id]; ok {
			properties = append(properties, p)
		}
	}
	return properties, nil
}
