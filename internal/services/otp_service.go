package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/utils"
)

const (
	otpLength      = 6
	otpTTL         = 10 * time.Minute
	otpMaxAttempts = 5
)

// OTPPurpose values accepted by the OTP service
const (
	OTPPurposeLogin       = "login"
	OTPPurposeEnable2FA   = "enable_2fa"
	OTPPurposeVerifyEmail = "verify_email"
	OTPPurposeVerifyPhone = "verify_phone"
)

// OTPService issues and verifies one-time codes
type OTPService struct {
	db *sql.DB
}

// NewOTPService creates a new OTP service
func NewOTPService(db *sql.DB) *OTPService {
	return &OTPService{db: db}
}

// CreateCode issues a fresh code for the user, invalidating any previous
// unused codes for the same purpose. Returns the stored record and the
// plain code for delivery.
func (s *OTPService) CreateCode(userID string, channel models.OTPChannel, purpose string) (*models.OTPCode, string, error) {
	if channel != models.OTPChannelEmail && channel != models.OTPChannelSMS {
		return nil, "", errors.New("invalid OTP channel")
	}

	code := utils.GenerateOTP(otpLength)
	now := time.Now()

	record := &models.OTPCode{
		ID:        uuid.New().String(),
		UserID:    userID,
		Code:      code,
		Channel:   channel,
		Purpose:   purpose,
		ExpiresAt: now.Add(otpTTL),
		Used:      false,
		Attempts:  0,
		CreatedAt: now,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// A new code supersedes any outstanding one for the same purpose
	_, err = tx.Exec(
		"UPDATE otp_codes SET used = TRUE WHERE user_id = ? AND purpose = ? AND used = FALSE",
		userID, purpose,
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO otp_codes (id, user_id, code, channel, purpose, expires_at, used, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.UserID, record.Code, record.Channel, record.Purpose,
		record.ExpiresAt, record.Used, record.Attempts, record.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("failed to store OTP code: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, code, nil
}

// VerifyCode checks a submitted code against the challenge. A correct code
// is consumed; a wrong one burns an attempt and the code dies after five.
func (s *OTPService) VerifyCode(challengeID, submitted string) (*models.OTPCode, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	record := &models.OTPCode{}
	err = tx.QueryRow(`
		SELECT id, user_id, code, channel, purpose, expires_at, used, attempts, created_at
		FROM otp_codes WHERE id = ?
	`, challengeID).Scan(
		&record.ID, &record.UserID, &record.Code, &record.Channel, &record.Purpose,
		&record.ExpiresAt, &record.Used, &record.Attempts, &record.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("invalid or expired code")
		}
		return nil, fmt.Errorf("failed to load OTP code: %w", err)
	}

	if record.Used {
		return nil, errors.New("invalid or expired code")
	}
	if record.IsExpired(time.Now()) {
		return nil, errors.New("invalid or expired code")
	}
	if record.Attempts >= otpMaxAttempts {
		return nil, errors.New("too many attempts, request a new code")
	}

	if record.Code != submitted {
		record.Attempts++
		if _, err := tx.Exec("UPDATE otp_codes SET attempts = ? WHERE id = ?", record.Attempts, record.ID); err != nil {
			return nil, fmt.Errorf("failed to record attempt: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		if record.Attempts >= otpMaxAttempts {
			return nil, errors.New("too many attempts, request a new code")
		}
		return nil, errors.New("invalid or expired code")
	}

	if _, err := tx.Exec("UPDATE otp_codes SET used = TRUE WHERE id = ?", record.ID); err != nil {
		return nil, fmt.Errorf("failed to consume code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	record.Used = true
	return record, nil
}

// CleanupExpiredCodes deletes codes past their expiry
func (s *OTPService) CleanupExpiredCodes() (int64, error) {
	result, err := s.db.Exec("DELETE FROM otp_codes WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up OTP codes: %w", err)
	}
	return result.RowsAffected()
}

// StartCleanupLoop periodically removes expired codes until stop is closed
func (s *OTPService) StartCleanupLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.CleanupExpiredCodes(); err != nil {
					log.Printf("OTP cleanup error: %v", err)
				}
			case <-stop:
				return
			}
		}
	}()
}
