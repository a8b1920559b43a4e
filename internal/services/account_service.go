package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

// AccountService implements registration, login with guest-cart merge, and
// the address / payment-method surfaces including their single-default
// invariant.
type AccountService struct {
	db             *gorm.DB
	minPasswordLen int
}

// NewAccountService constructs AccountService.
func NewAccountService(db *gorm.DB, minPasswordLen int) *AccountService {
	return &AccountService{db: db, minPasswordLen: minPasswordLen}
}

// RegisterInput carries registration fields. Identifier is an email or a
// phone number; Username is optional and derived when absent.
type RegisterInput struct {
	Identifier string
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Role       string
}

// Register creates a new user. Duplicate email, phone or explicit username
// map to ErrConflict; a derived username is deduplicated with a counter
// suffix instead.
func (s *AccountService) Register(in RegisterInput) (*models.User, error) {
	if strings.TrimSpace(in.Identifier) == "" {
		return nil, Validation("email or phone is required")
	}
	if len(in.Password) < s.minPasswordLen {
		return nil, Validation("password must be at least %d characters", s.minPasswordLen)
	}

	role := in.Role
	switch role {
	case "":
		role = models.RoleShopper
	case models.RoleShopper, models.RoleMerchant:
	default:
		return nil, Validation("invalid role %q", role)
	}

	user := models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
	}

	var usernameBase string
	switch utils.ClassifyIdentifier(in.Identifier) {
	case utils.IdentifierEmail:
		email := strings.ToLower(strings.TrimSpace(in.Identifier))
		var count int64
		if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("email %w", ErrConflict)
		}
		user.Email = &email
		usernameBase = email[:strings.Index(email, "@")]
	case utils.IdentifierPhone:
		phone := utils.NormalizePhone(in.Identifier)
		var count int64
		if err := s.db.Model(&models.User{}).Where("phone = ?", phone).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("phone %w", ErrConflict)
		}
		user.Phone = &phone
		if len(phone) >= 4 {
			usernameBase = phone[len(phone)-4:]
		}
	default:
		return nil, Validation("identifier must be an email or a phone number")
	}

	if explicit := strings.TrimSpace(in.Username); explicit != "" {
		var count int64
		if err := s.db.Model(&models.User{}).Where("username = ?", explicit).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("username %w", ErrConflict)
		}
		user.Username = explicit
	} else {
		derived, err := s.deriveUsername(usernameBase)
		if err != nil {
			return nil, err
		}
		user.Username = derived
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	// The duplicate checks above race with concurrent registrations; the
	// unique indexes are the source of truth.
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("account %w", ErrConflict)
		}
		return nil, err
	}

	return &user, nil
}

// deriveUsername deduplicates the base by suffixing an incrementing counter
// until the name is free. An empty base falls back to "user".
func (s *AccountService) deriveUsername(base string) (string, error) {
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := s.db.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// Login resolves the identifier by shape, verifies the password and, in a
// single transaction, merges any guest cart held by sess and assigns the
// session to the user. The transaction boundary keeps a crash from dropping
// or duplicating the guest cart.
func (s *AccountService) Login(identifier, password string, sess *models.Session) (*models.User, error) {
	var user models.User
	var err error

	switch utils.ClassifyIdentifier(identifier) {
	case utils.IdentifierEmail:
		err = s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(identifier))).First(&user).Error
	case utils.IdentifierPhone:
		err = s.db.Where("phone = ?", utils.NormalizePhone(identifier)).First(&user).Error
	default:
		err = s.db.Where("username = ?", strings.TrimSpace(identifier)).First(&user).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := mergeGuestCart(tx, sess.ID, user.ID); err != nil {
			return err
		}
		return tx.Model(&models.Session{}).Where("id = ?", sess.ID).
			Update("user_id", user.ID).Error
	})
	if err != nil {
		return nil, err
	}

	sess.UserID = &user.ID
	return &user, nil
}

// GetUser loads a user by id.
func (s *AccountService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Address operations

// ListAddresses returns the user's addresses, default first.
func (s *AccountService) ListAddresses(userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := s.db.Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&addresses).Error
	return addresses, err
}

// GetAddress loads one address with an ownership check.
func (s *AccountService) GetAddress(userID, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := s.db.First(&address, "id = ?", addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, ErrOwnership
	}
	return &address, nil
}

// CreateAddress persists a new address; when flagged default it atomically
// displaces any prior default.
func (s *AccountService) CreateAddress(userID uuid.UUID, address *models.Address) error {
	address.UserID = userID
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(address).Error; err != nil {
			return err
		}
		if address.IsDefault {
			return setDefaultRow(tx, &models.Address{}, userID, address.ID)
		}
		return nil
	})
}

// UpdateAddress applies field updates after an ownership check.
func (s *AccountService) UpdateAddress(userID, addressID uuid.UUID, updates map[string]interface{}) (*models.Address, error) {
	address, err := s.GetAddress(userID, addressID)
	if err != nil {
		return nil, err
	}

	makeDefault := false
	if v, ok := updates["is_default"]; ok {
		makeDefault, _ = v.(bool)
		delete(updates, "is_default")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(address).Updates(updates).Error; err != nil {
				return err
			}
		}
		if makeDefault {
			return setDefaultRow(tx, &models.Address{}, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetAddress(userID, addressID)
}

// SetDefaultAddress marks one address as the user's default and clears all
// others in the same transaction.
func (s *AccountService) SetDefaultAddress(userID, addressID uuid.UUID) error {
	if _, err := s.GetAddress(userID, addressID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return setDefaultRow(tx, &models.Address{}, userID, addressID)
	})
}

// DeleteAddress removes an address after an ownership check.
func (s *AccountService) DeleteAddress(userID, addressID uuid.UUID) error {
	address, err := s.GetAddress(userID, addressID)
	if err != nil {
		return err
	}
	return s.db.Delete(address).Error
}

// Payment method operations

// ListPaymentMethods returns the user's stored cards, default first.
func (s *AccountService) ListPaymentMethods(userID uuid.UUID) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := s.db.Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&methods).Error
	return methods, err
}

// GetPaymentMethod loads one card with an ownership check.
func (s *AccountService) GetPaymentMethod(userID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := s.db.First(&method, "id = ?", methodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if method.UserID != userID {
		return nil, ErrOwnership
	}
	return &method, nil
}

// CreatePaymentMethod persists a new card, recomputing the derived
// is_expired flag and handling the default invariant.
func (s *AccountService) CreatePaymentMethod(userID uuid.UUID, method *models.PaymentMethod) error {
	method.UserID = userID
	method.RefreshExpired(time.Now())
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(method).Error; err != nil {
			return err
		}
		if method.IsDefault {
			return setDefaultRow(tx, &models.PaymentMethod{}, userID, method.ID)
		}
		return nil
	})
}

// UpdatePaymentMethod applies field updates, recomputing is_expired when an
// expiry field changes.
func (s *AccountService) UpdatePaymentMethod(userID, methodID uuid.UUID, updates map[string]interface{}) (*models.PaymentMethod, error) {
	method, err := s.GetPaymentMethod(userID, methodID)
	if err != nil {
		return nil, err
	}

	makeDefault := false
	if v, ok := updates["is_default"]; ok {
		makeDefault, _ = v.(bool)
		delete(updates, "is_default")
	}

	if v, ok := updates["expiry_month"]; ok {
		if month, ok := v.(int); ok {
			method.ExpiryMonth = month
		}
	}
	if v, ok := updates["expiry_year"]; ok {
		if year, ok := v.(int); ok {
			method.ExpiryYear = year
		}
	}
	method.RefreshExpired(time.Now())
	updates["is_expired"] = method.IsExpired

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(method).Updates(updates).Error; err != nil {
			return err
		}
		if makeDefault {
			return setDefaultRow(tx, &models.PaymentMethod{}, userID, method.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetPaymentMethod(userID, methodID)
}

// DeletePaymentMethod removes a card after an ownership check.
func (s *AccountService) DeletePaymentMethod(userID, methodID uuid.UUID) error {
	method, err := s.GetPaymentMethod(userID, methodID)
	if err != nil {
		return err
	}
	return s.db.Delete(method).Error
}

// setDefaultRow enforces the single-default invariant for addresses and
// payment methods: clear every other row, then set the target, atomically
// within the caller's transaction.
func setDefaultRow(tx *gorm.DB, model interface{}, userID, targetID uuid.UUID) error {
	if err := tx.Model(model).
		Where("user_id = ? AND id <> ?", userID, targetID).
		Update("is_default", false).Error; err != nil {
		return err
	}
	return tx.Model(model).
		Where("id = ?", targetID).
		Update("is_default", true).Error
}

// Merchant profile operations

// GetMerchantProfile returns the profile for a merchant-role user.
func (s *AccountService) GetMerchantProfile(userID uuid.UUID) (*models.MerchantProfile, error) {
	var profile models.MerchantProfile
	if err := s.db.First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpsertMerchantProfile creates or updates the one-to-one merchant profile.
// Only merchant-role users may hold one; the verification flag is never
// writable through this path.
func (s *AccountService) UpsertMerchantProfile(userID uuid.UUID, incoming *models.MerchantProfile) (*models.MerchantProfile, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleMerchant {
		return nil, ErrOwnership
	}

	var profile models.MerchantProfile
	err = s.db.First(&profile, "user_id = ?", userID).Error
	switch {
	case err == nil:
		incoming.ID = profile.ID
		incoming.UserID = userID
		incoming.IsVerified = profile.IsVerified
		incoming.Rating = profile.Rating
		incoming.ReviewCount = profile.ReviewCount
		if err := s.db.Model(&profile).Updates(incoming).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		incoming.UserID = userID
		incoming.IsVerified = false
		if err := s.db.Create(incoming).Error; err != nil {
			return nil, err
		}
		profile = *incoming
	default:
		return nil, err
	}

	return s.GetMerchantProfile(userID)
}
