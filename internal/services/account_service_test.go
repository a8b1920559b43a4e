package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

const testMinPasswordLen = 8

func TestRegisterWithEmailDerivesUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	user, err := svc.Register(RegisterInput{
		Identifier: "Alice@Example.com",
		Password:   "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	require.NotNil(t, user.Email)
	assert.Equal(t, "alice@example.com", *user.Email)
	assert.Equal(t, models.RoleShopper, user.Role)
}

func TestRegisterWithPhoneDerivesUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	user, err := svc.Register(RegisterInput{
		Identifier: "+1 (555) 123-4567",
		Password:   "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "4567", user.Username)
	require.NotNil(t, user.Phone)
	assert.Equal(t, "15551234567", *user.Phone)
}

func TestRegisterDeduplicatesDerivedUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	first, err := svc.Register(RegisterInput{Identifier: "alice@one.com", Password: "secret-pass"})
	require.NoError(t, err)
	second, err := svc.Register(RegisterInput{Identifier: "alice@two.com", Password: "secret-pass"})
	require.NoError(t, err)
	third, err := svc.Register(RegisterInput{Identifier: "alice@three.com", Password: "secret-pass"})
	require.NoError(t, err)

	assert.Equal(t, "alice", first.Username)
	assert.Equal(t, "alice1", second.Username)
	assert.Equal(t, "alice2", third.Username)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	first, err := svc.Register(RegisterInput{Identifier: "alice@example.com", Password: "secret-pass"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Identifier: "alice@example.com", Password: "other-pass1"})
	assert.True(t, errors.Is(err, ErrConflict))

	// First user's row is unaffected by the failed attempt.
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", first.ID).Error)
	assert.Equal(t, first.Username, user.Username)
}

func TestRegisterDuplicatePhoneConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	_, err := svc.Register(RegisterInput{Identifier: "555-123-4567", Password: "secret-pass"})
	require.NoError(t, err)

	// Same number, different formatting.
	_, err = svc.Register(RegisterInput{Identifier: "(555) 123 4567", Password: "secret-pass"})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	_, err := svc.Register(RegisterInput{Identifier: "alice@example.com", Password: "short"})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRegisterRejectsUsernameIdentifier(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	_, err := svc.Register(RegisterInput{Identifier: "just-a-name", Password: "secret-pass"})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestLoginByEachIdentifierShape(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	registered, err := svc.Register(RegisterInput{
		Identifier: "alice@example.com",
		Username:   "alice",
		Password:   "secret-pass",
	})
	require.NoError(t, err)

	phone, err := svc.Register(RegisterInput{
		Identifier: "555-123-4567",
		Password:   "secret-pass",
	})
	require.NoError(t, err)

	for _, identifier := range []string{"alice", "alice@example.com"} {
		sess := createSession(t, db)
		user, err := svc.Login(identifier, "secret-pass", sess)
		require.NoError(t, err, "identifier %q", identifier)
		assert.Equal(t, registered.ID, user.ID)
	}

	// Same number, different formatting than at registration.
	sess := createSession(t, db)
	matched, err := svc.Login("(555) 123-4567", "secret-pass", sess)
	require.NoError(t, err)
	assert.Equal(t, phone.ID, matched.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	_, err := svc.Register(RegisterInput{Identifier: "alice@example.com", Password: "secret-pass"})
	require.NoError(t, err)

	sess := createSession(t, db)
	_, err = svc.Login("alice@example.com", "wrong-pass", sess)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	sess2 := createSession(t, db)
	_, err = svc.Login("nobody@example.com", "secret-pass", sess2)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestLoginMergesGuestCart(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db, testMinPasswordLen)
	carts := NewCartService(db)

	productX := createProduct(t, db, "X", "10.00", 20)
	productY := createProduct(t, db, "Y", "4.50", 20)

	user, err := accounts.Register(RegisterInput{Identifier: "alice@example.com", Password: "secret-pass"})
	require.NoError(t, err)

	// User already holds X qty 1.
	_, err = carts.AddItem(OwnedByUser(user.ID), productX.ID, 1)
	require.NoError(t, err)

	// Guest holds X qty 2 and Y qty 3.
	sess := createSession(t, db)
	_, err = carts.AddItem(OwnedByGuest(sess.ID), productX.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(OwnedByGuest(sess.ID), productY.ID, 3)
	require.NoError(t, err)

	_, err = accounts.Login("alice@example.com", "secret-pass", sess)
	require.NoError(t, err)

	// Session now belongs to the user.
	var updated models.Session
	require.NoError(t, db.First(&updated, "id = ?", sess.ID).Error)
	require.NotNil(t, updated.UserID)
	assert.Equal(t, user.ID, *updated.UserID)

	// One row for X with summed quantity, Y re-owned, no guest rows left.
	items, err := carts.ListItems(OwnedByUser(user.ID))
	require.NoError(t, err)
	require.Len(t, items, 2)

	quantities := map[string]int{}
	for _, item := range items {
		quantities[item.ProductID.String()] = item.Quantity
	}
	assert.Equal(t, 3, quantities[productX.ID.String()])
	assert.Equal(t, 3, quantities[productY.ID.String()])

	var guestCount int64
	require.NoError(t, db.Model(&models.CartItem{}).
		Where("session_id = ?", sess.ID).Count(&guestCount).Error)
	assert.EqualValues(t, 0, guestCount)
}

func TestSetDefaultAddressIsExclusive(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)
	user := createUser(t, db, "alice")

	addresses := make([]*models.Address, 3)
	for i := range addresses {
		address := models.Address{
			Name:         "Alice",
			AddressLine1: "1 Main St",
			City:         "Springfield",
			PostalCode:   "12345",
			Country:      "US",
			IsDefault:    true,
		}
		require.NoError(t, svc.CreateAddress(user.ID, &address))
		addresses[i] = &address
	}

	require.NoError(t, svc.SetDefaultAddress(user.ID, addresses[1].ID))

	var defaults int64
	require.NoError(t, db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", user.ID, true).
		Count(&defaults).Error)
	assert.EqualValues(t, 1, defaults)

	current, err := svc.GetAddress(user.ID, addresses[1].ID)
	require.NoError(t, err)
	assert.True(t, current.IsDefault)
}

func TestAddressOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	address := models.Address{
		Name:         "Alice",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		PostalCode:   "12345",
		Country:      "US",
	}
	require.NoError(t, svc.CreateAddress(alice.ID, &address))

	_, err := svc.GetAddress(bob.ID, address.ID)
	assert.True(t, errors.Is(err, ErrOwnership))

	err = svc.DeleteAddress(bob.ID, address.ID)
	assert.True(t, errors.Is(err, ErrOwnership))
}

func TestPaymentMethodDefaultAndExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)
	user := createUser(t, db, "alice")

	expired := models.PaymentMethod{
		CardType:       "Visa",
		LastFour:       "1111",
		CardholderName: "Alice",
		ExpiryMonth:    1,
		ExpiryYear:     2020,
		IsDefault:      true,
	}
	require.NoError(t, svc.CreatePaymentMethod(user.ID, &expired))
	assert.True(t, expired.IsExpired)

	current := models.PaymentMethod{
		CardType:       "Mastercard",
		LastFour:       "2222",
		CardholderName: "Alice",
		ExpiryMonth:    12,
		ExpiryYear:     2099,
		IsDefault:      true,
	}
	require.NoError(t, svc.CreatePaymentMethod(user.ID, &current))
	assert.False(t, current.IsExpired)

	var defaults int64
	require.NoError(t, db.Model(&models.PaymentMethod{}).
		Where("user_id = ? AND is_default = ?", user.ID, true).
		Count(&defaults).Error)
	assert.EqualValues(t, 1, defaults)

	method, err := svc.GetPaymentMethod(user.ID, current.ID)
	require.NoError(t, err)
	assert.True(t, method.IsDefault)
}

func TestMerchantProfileRequiresMerchantRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	shopper := createUser(t, db, "alice")
	_, err := svc.UpsertMerchantProfile(shopper.ID, &models.MerchantProfile{BusinessName: "Shop"})
	assert.True(t, errors.Is(err, ErrOwnership))

	merchant, err := svc.Register(RegisterInput{
		Identifier: "seller@example.com",
		Password:   "secret-pass",
		Role:       models.RoleMerchant,
	})
	require.NoError(t, err)

	profile, err := svc.UpsertMerchantProfile(merchant.ID, &models.MerchantProfile{BusinessName: "Shop"})
	require.NoError(t, err)
	assert.Equal(t, "Shop", profile.BusinessName)
	assert.False(t, profile.IsVerified)

	// Upsert updates in place rather than duplicating the row.
	updated, err := svc.UpsertMerchantProfile(merchant.ID, &models.MerchantProfile{BusinessName: "Shop 2"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, updated.ID)
	assert.Equal(t, "Shop 2", updated.BusinessName)
}

func TestRegisterConcurrentDuplicateMapsToConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testMinPasswordLen)

	// Slip a conflicting row in after the duplicate checks ran but before
	// the insert, the way a concurrent registration would.
	raced := false
	err := db.Callback().Create().Before("gorm:create").Register("test:race_duplicate", func(tx *gorm.DB) {
		if raced {
			return
		}
		if _, ok := tx.Statement.Dest.(*models.User); !ok {
			return
		}
		raced = true
		email := "bob@example.com"
		rival := models.User{Username: "bob", Email: &email, PasswordHash: "x", Role: models.RoleShopper}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(&rival).Error)
	})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{
		Identifier: "bob@example.com",
		Password:   "secret-pass",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}
