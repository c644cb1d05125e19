package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

func newWishlistTestService(t *testing.T, name string) (IWishlistService, *mongo.Database) {
	db := setupBookingTestDB(t, name)
	users := NewUserService(db)
	props := NewPropertyService(db, users)
	return NewWishlistService(db, props), db
}

func TestWishlistService_AddRemoveList(t *testing.T) {
	svc, db := newWishlistTestService(t, "testdb_wishlist")
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	propertyA := insertTestProperty(t, db, owner.ID, 12000)
	propertyB := insertTestProperty(t, db, owner.ID, 15000)

	wishlist, err := svc.Add(ctx, seeker.ID, propertyA.ID)
	require.NoError(t, err)
	assert.Equal(t, []utils.SixID{propertyA.ID}, wishlist)

	wishlist, err = svc.Add(ctx, seeker.ID, propertyB.ID)
	require.NoError(t, err)
	assert.Equal(t, []utils.SixID{propertyA.ID, propertyB.ID}, wishlist)

	// List resolves ids to full listings in saved order.
	properties, err := svc.List(ctx, seeker.ID)
	require.NoError(t, err)
	require.Len(t, properties, 2)
	assert.Equal(t, propertyA.ID, properties[0].ID)
	assert.Equal(t, propertyB.ID, properties[1].ID)

	wishlist, err = svc.Remove(ctx, seeker.ID, propertyA.ID)
	require.NoError(t, err)
	assert.Equal(t, []utils.SixID{propertyB.ID}, wishlist)

	properties, err = svc.List(ctx, seeker.ID)
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, propertyB.ID, properties[0].ID)
}

func TestWishlistService_AddIsIdempotent(t *testing.T) {
	svc, db := newWishlistTestService(t, "testdb_wishlist_dup")
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	_, err := svc.Add(ctx, seeker.ID, property.ID)
	require.NoError(t, err)
	wishlist, err := svc.Add(ctx, seeker.ID, property.ID)
	require.NoError(t, err)
	assert.Equal(t, []utils.SixID{property.ID}, wishlist)
}

func TestWishlistService_UnknownIDs(t *testing.T) {
	svc, db := newWishlistTestService(t, "testdb_wishlist_missing")
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	property := insertTestProperty(t, db, owner.ID, 12000)

	// Saving a property that does not exist fails.
	_, err := svc.Add(ctx, seeker.ID, utils.NewSixID())
	assert.ErrorIs(t, err, ErrNotFound)

	// So does any operation for an unknown user.
	_, err = svc.Add(ctx, utils.NewSixID(), property.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.List(ctx, utils.NewSixID())
	assert.ErrorIs(t, err, ErrNotFound)

	// Removing an id that was never saved is a no-op.
	wishlist, err := svc.Remove(ctx, seeker.ID, property.ID)
	require.NoError(t, err)
	assert.Empty(t, wishlist)
}

func TestWishlistService_ListSkipsDeletedProperties(t *testing.T) {
	svc, db := newWishlistTestService(t, "testdb_wishlist_deleted")
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleOwner, "9876543210")
	seeker := insertTestUser(t, db, models.RoleUser, "")
	propertyA := insertTestProperty(t, db, owner.ID, 12000)
	propertyB := insertTestProperty(t, db, owner.ID, 15000)

	_, err := svc.Add(ctx, seeker.ID, propertyA.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, seeker.ID, propertyB.ID)
	require.NoError(t, err)

	// Delete one listing out from under the wishlist.
	_, err = db.Collection("properties").DeleteOne(ctx, bson.M{"_id": propertyA.ID})
	require.NoError(t, err)

	properties, err := svc.List(ctx, seeker.ID)
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, propertyB.ID, properties[0].ID)
}
