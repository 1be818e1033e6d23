package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/utils"
)

// UserService handles user-related business logic
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new user service
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// CreateUser registers a new client or vendeur account. A vendeur account
// also gets an unapproved vendor profile in the same transaction.
func (s *UserService) CreateUser(registration *models.UserRegistration) (*models.User, error) {
	if err := utils.ValidateStruct(registration); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if passwordErrors := utils.ValidatePassword(registration.Password); len(passwordErrors) > 0 {
		return nil, fmt.Errorf("password validation failed: %s", strings.Join(passwordErrors, ", "))
	}

	if registration.UserType == models.UserTypeVendor && strings.TrimSpace(registration.BusinessName) == "" {
		return nil, errors.New("business name is required for vendeur accounts")
	}

	// Sanitize string inputs
	registration.Email = utils.NormalizeEmail(utils.SanitizeString(registration.Email))
	registration.FirstName = utils.SanitizeString(registration.FirstName)
	registration.LastName = utils.SanitizeString(registration.LastName)
	registration.BusinessName = utils.SanitizeString(registration.BusinessName)

	if len(registration.FirstName) < 2 || len(registration.LastName) < 2 {
		return nil, errors.New("first name and last name must be at least 2 characters after sanitization")
	}

	exists, err := s.UserExists(registration.Email, registration.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, errors.New("user with this email or phone already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	formattedPhone := utils.FormatPhoneNumber(registration.Phone)

	now := time.Now()
	user := &models.User{
		ID:               uuid.New().String(),
		Email:            registration.Email,
		Phone:            formattedPhone,
		FirstName:        registration.FirstName,
		LastName:         registration.LastName,
		PasswordHash:     string(hashedPassword),
		UserType:         registration.UserType,
		Status:           models.UserStatusActive,
		Language:         registration.Language,
		TwoFactorEnabled: false,
		TwoFactorChannel: models.OTPChannelEmail,
		IsEmailVerified:  false,
		IsPhoneVerified:  false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if user.Language == "" {
		user.Language = "fr"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (
			id, email, phone, first_name, last_name, password_hash, user_type, status,
			language, two_factor_enabled, two_factor_channel, is_email_verified,
			is_phone_verified, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		user.ID, user.Email, user.Phone, user.FirstName, user.LastName,
		user.PasswordHash, user.UserType, user.Status, user.Language,
		user.TwoFactorEnabled, user.TwoFactorChannel, user.IsEmailVerified,
		user.IsPhoneVerified, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if user.UserType == models.UserTypeVendor {
		profile := &models.VendorProfile{
			ID:                  uuid.New().String(),
			UserID:              user.ID,
			BusinessName:        registration.BusinessName,
			BusinessDescription: registration.BusinessDescription,
			IsApproved:          false,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		_, err = tx.Exec(`
			INSERT INTO vendor_profiles (id, user_id, business_name, business_description, is_approved, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, profile.ID, profile.UserID, profile.BusinessName, profile.BusinessDescription,
			profile.IsApproved, profile.CreatedAt, profile.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create vendor profile: %w", err)
		}

		user.VendorProfile = profile
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// AuthenticateUser authenticates a user with email/phone and password
func (s *UserService) AuthenticateUser(login *models.UserLogin) (*models.User, error) {
	if err := utils.ValidateStruct(login); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	login.Identifier = utils.SanitizeString(login.Identifier)
	if len(login.Identifier) == 0 {
		return nil, fmt.Errorf("invalid credentials")
	}

	user, err := s.GetUserByEmailOrPhone(login.Identifier)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(login.Password))
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if !user.IsActive() {
		return nil, fmt.Errorf("account is not active")
	}

	return user, nil
}

// GetUserByID retrieves a user by ID, with the vendor profile when present
func (s *UserService) GetUserByID(userID string) (*models.User, error) {
	query := `
		SELECT id, email, phone, first_name, last_name, password_hash, user_type, status,
			   avatar, city, country, address, language, two_factor_enabled,
			   two_factor_channel, is_email_verified, is_phone_verified, created_at, updated_at
		FROM users WHERE id = ?
	`

	user := &models.User{}
	err := s.db.QueryRow(query, userID).Scan(
		&user.ID, &user.Email, &user.Phone, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.UserType, &user.Status, &user.Avatar, &user.City,
		&user.Country, &user.Address, &user.Language, &user.TwoFactorEnabled,
		&user.TwoFactorChannel, &user.IsEmailVerified, &user.IsPhoneVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.UserType == models.UserTypeVendor {
		profile, err := s.getVendorProfile(user.ID)
		if err != nil {
			return nil, err
		}
		user.VendorProfile = profile
	}

	return user, nil
}

// GetUserByEmailOrPhone retrieves a user by email or phone
func (s *UserService) GetUserByEmailOrPhone(identifier string) (*models.User, error) {
	normalizedIdentifier := strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		normalizedIdentifier = utils.NormalizeEmail(identifier)
	}

	formattedIdentifier := normalizedIdentifier
	if utils.IsPhoneNumber(identifier) {
		formattedIdentifier = utils.FormatPhoneNumber(identifier)
	}

	query := `
		SELECT id, email, phone, first_name, last_name, password_hash, user_type, status,
			   avatar, city, country, address, language, two_factor_enabled,
			   two_factor_channel, is_email_verified, is_phone_verified, created_at, updated_at
		FROM users WHERE email = ? OR phone = ?
	`

	user := &models.User{}
	err := s.db.QueryRow(query, normalizedIdentifier, formattedIdentifier).Scan(
		&user.ID, &user.Email, &user.Phone, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.UserType, &user.Status, &user.Avatar, &user.City,
		&user.Country, &user.Address, &user.Language, &user.TwoFactorEnabled,
		&user.TwoFactorChannel, &user.IsEmailVerified, &user.IsPhoneVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.UserType == models.UserTypeVendor {
		profile, err := s.getVendorProfile(user.ID)
		if err != nil {
			return nil, err
		}
		user.VendorProfile = profile
	}

	return user, nil
}

// UserExists checks whether a user with the email or phone already exists
func (s *UserService) UserExists(email, phone string) (bool, error) {
	formattedPhone := utils.FormatPhoneNumber(phone)

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM users WHERE email = ? OR phone = ?",
		utils.NormalizeEmail(email), formattedPhone,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return count > 0, nil
}

// UpdateUser updates user profile information
func (s *UserService) UpdateUser(userID string, update *models.UserProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	var setParts []string
	var args []interface{}

	if update.FirstName != nil {
		setParts = append(setParts, "first_name = ?")
		args = append(args, utils.SanitizeString(*update.FirstName))
	}
	if update.LastName != nil {
		setParts = append(setParts, "last_name = ?")
		args = append(args, utils.SanitizeString(*update.LastName))
	}
	if update.Phone != nil {
		if !utils.IsPhoneNumber(*update.Phone) {
			return nil, errors.New("invalid phone number format")
		}
		setParts = append(setParts, "phone = ?")
		args = append(args, utils.FormatPhoneNumber(*update.Phone))
	}
	if update.Avatar != nil {
		setParts = append(setParts, "avatar = ?")
		args = append(args, *update.Avatar)
	}
	if update.City != nil {
		setParts = append(setParts, "city = ?")
		args = append(args, utils.SanitizeString(*update.City))
	}
	if update.Country != nil {
		setParts = append(setParts, "country = ?")
		args = append(args, utils.SanitizeString(*update.Country))
	}
	if update.Address != nil {
		setParts = append(setParts, "address = ?")
		args = append(args, utils.SanitizeString(*update.Address))
	}
	if update.Language != nil {
		setParts = append(setParts, "language = ?")
		args = append(args, utils.SanitizeString(*update.Language))
	}

	if len(setParts) == 0 {
		return user, nil
	}

	setParts = append(setParts, "updated_at = ?")
	args = append(args, time.Now())
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(setParts, ", "))
	if _, err := s.db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.GetUserByID(userID)
}

// SetTwoFactor enables or disables two-factor login for a user
func (s *UserService) SetTwoFactor(userID string, enabled bool, channel models.OTPChannel) error {
	if enabled && channel != models.OTPChannelEmail && channel != models.OTPChannelSMS {
		return errors.New("invalid two-factor channel")
	}

	result, err := s.db.Exec(`
		UPDATE users SET two_factor_enabled = ?, two_factor_channel = ?, updated_at = ?
		WHERE id = ?
	`, enabled, channel, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update two-factor settings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return errors.New("user not found")
	}

	return nil
}

// ApproveVendor marks a vendeur's profile as approved
func (s *UserService) ApproveVendor(vendorUserID string) error {
	now := time.Now()
	result, err := s.db.Exec(`
		UPDATE vendor_profiles SET is_approved = TRUE, approved_at = ?, updated_at = ?
		WHERE user_id = ? AND is_approved = FALSE
	`, now, now, vendorUserID)
	if err != nil {
		return fmt.Errorf("failed to approve vendor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check approval result: %w", err)
	}
	if rows == 0 {
		return errors.New("vendor profile not found or already approved")
	}

	return nil
}

// ListPendingVendors returns vendeur accounts awaiting approval
func (s *UserService) ListPendingVendors() ([]models.User, error) {
	query := `
		SELECT u.id, u.email, u.phone, u.first_name, u.last_name, u.user_type, u.status,
			   u.created_at, u.updated_at,
			   vp.id, vp.user_id, vp.business_name, vp.business_description, vp.is_approved,
			   vp.approved_at, vp.created_at, vp.updated_at
		FROM users u
		JOIN vendor_profiles vp ON vp.user_id = u.id
		WHERE vp.is_approved = FALSE AND u.status = 'active'
		ORDER BY vp.created_at ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending vendors: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var profile models.VendorProfile
		err := rows.Scan(
			&user.ID, &user.Email, &user.Phone, &user.FirstName, &user.LastName,
			&user.UserType, &user.Status, &user.CreatedAt, &user.UpdatedAt,
			&profile.ID, &profile.UserID, &profile.BusinessName, &profile.BusinessDescription,
			&profile.IsApproved, &profile.ApprovedAt, &profile.CreatedAt, &profile.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		user.VendorProfile = &profile
		users = append(users, user)
	}

	return users, rows.Err()
}

// SetUserStatus suspends or reactivates an account
func (s *UserService) SetUserStatus(userID string, status models.UserStatus) error {
	if status != models.UserStatusActive && status != models.UserStatusSuspended {
		return errors.New("invalid user status")
	}

	result, err := s.db.Exec(
		"UPDATE users SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return errors.New("user not found")
	}

	return nil
}

func (s *UserService) getVendorProfile(userID string) (*models.VendorProfile, error) {
	profile := &models.VendorProfile{}
	err := s.db.QueryRow(`
		SELECT id, user_id, business_name, business_description, is_approved, approved_at, created_at, updated_at
		FROM vendor_profiles WHERE user_id = ?
	`, userID).Scan(
		&profile.ID, &profile.UserID, &profile.BusinessName, &profile.BusinessDescription,
		&profile.IsApproved, &profile.ApprovedAt, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vendor profile: %w", err)
	}

	return profile, nil
}
