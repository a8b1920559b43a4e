package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bazaar/internal/models"
)

func TestCartAddItemCombinesQuantities(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	product := createProduct(t, db, "Widget", "9.99", 10)
	user := createUser(t, db, "alice")
	owner := OwnedByUser(user.ID)

	_, err := svc.AddItem(owner, product.ID, 2)
	require.NoError(t, err)

	item, err := svc.AddItem(owner, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCartAddItemRejectsOverStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	product := createProduct(t, db, "Scarce", "5.00", 3)
	user := createUser(t, db, "alice")
	owner := OwnedByUser(user.ID)

	_, err := svc.AddItem(owner, product.ID, 4)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Scarce", stockErr.ProductName)

	// Combined quantity over stock is rejected too.
	_, err = svc.AddItem(owner, product.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(owner, product.ID, 2)
	require.ErrorAs(t, err, &stockErr)

	items, err := svc.ListItems(owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	user := createUser(t, db, "alice")

	_, err := svc.AddItem(OwnedByUser(user.ID), uuid.New(), 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCartAddItemRejectsZeroQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	product := createProduct(t, db, "Widget", "9.99", 10)
	user := createUser(t, db, "alice")

	_, err := svc.AddItem(OwnedByUser(user.ID), product.ID, 0)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCartUpdateItemOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	product := createProduct(t, db, "Widget", "9.99", 10)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	item, err := svc.AddItem(OwnedByUser(alice.ID), product.ID, 2)
	require.NoError(t, err)

	_, err = svc.UpdateItem(OwnedByUser(bob.ID), item.ID, 5)
	assert.True(t, errors.Is(err, ErrOwnership))

	err = svc.RemoveItem(OwnedByUser(bob.ID), item.ID)
	assert.True(t, errors.Is(err, ErrOwnership))
}

func TestCartUpdateItemZeroDeletes(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	product := createProduct(t, db, "Widget", "9.99", 10)
	user := createUser(t, db, "alice")
	owner := OwnedByUser(user.ID)

	item, err := svc.AddItem(owner, product.ID, 2)
	require.NoError(t, err)

	updated, err := svc.UpdateItem(owner, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, updated)

	items, err := svc.ListItems(owner)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartUpdateItemRevalidatesStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	product := createProduct(t, db, "Widget", "9.99", 4)
	user := createUser(t, db, "alice")
	owner := OwnedByUser(user.ID)

	item, err := svc.AddItem(owner, product.ID, 2)
	require.NoError(t, err)

	_, err = svc.UpdateItem(owner, item.ID, 5)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	updated, err := svc.UpdateItem(owner, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
}

func TestCartRemoveItemReplayReportsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	product := createProduct(t, db, "Widget", "9.99", 10)
	user := createUser(t, db, "alice")
	owner := OwnedByUser(user.ID)

	item, err := svc.AddItem(owner, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(owner, item.ID))
	assert.True(t, errors.Is(svc.RemoveItem(owner, item.ID), ErrNotFound))
}

func TestCartGuestAndUserScopesAreSeparate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	product := createProduct(t, db, "Widget", "9.99", 10)
	user := createUser(t, db, "alice")
	sess := createSession(t, db)

	_, err := svc.AddItem(OwnedByUser(user.ID), product.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(OwnedByGuest(sess.ID), product.ID, 2)
	require.NoError(t, err)

	userItems, err := svc.ListItems(OwnedByUser(user.ID))
	require.NoError(t, err)
	guestItems, err := svc.ListItems(OwnedByGuest(sess.ID))
	require.NoError(t, err)

	require.Len(t, userItems, 1)
	require.Len(t, guestItems, 1)
	assert.Equal(t, 1, userItems[0].Quantity)
	assert.Equal(t, 2, guestItems[0].Quantity)
}
