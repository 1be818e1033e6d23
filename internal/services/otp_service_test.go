package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/models"
)

func TestOTPVerifyIsSingleUse(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	otps := NewOTPService(db)

	record, code, err := otps.CreateCode(user.ID, models.OTPChannelEmail, OTPPurposeLogin)
	require.NoError(t, err)
	require.Len(t, code, 6)

	verified, err := otps.VerifyCode(record.ID, code)
	require.NoError(t, err)
	assert.True(t, verified.Used)
	assert.Equal(t, user.ID, verified.UserID)

	// Consumed codes cannot be replayed
	_, err = otps.VerifyCode(record.ID, code)
	assert.ErrorContains(t, err, "invalid or expired")
}

func TestOTPWrongCodeBurnsAttempts(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	otps := NewOTPService(db)

	record, code, err := otps.CreateCode(user.ID, models.OTPChannelSMS, OTPPurposeLogin)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err = otps.VerifyCode(record.ID, "000000")
		assert.ErrorContains(t, err, "invalid or expired")
	}

	// The fifth wrong attempt locks the code out
	_, err = otps.VerifyCode(record.ID, "000000")
	assert.ErrorContains(t, err, "too many attempts")

	// Even the right code is dead now
	_, err = otps.VerifyCode(record.ID, code)
	assert.ErrorContains(t, err, "too many attempts")
}

func TestOTPExpiredCodeRejected(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	otps := NewOTPService(db)

	record, code, err := otps.CreateCode(user.ID, models.OTPChannelEmail, OTPPurposeLogin)
	require.NoError(t, err)

	_, err = db.Exec(
		"UPDATE otp_codes SET expires_at = ? WHERE id = ?",
		time.Now().Add(-time.Minute), record.ID,
	)
	require.NoError(t, err)

	_, err = otps.VerifyCode(record.ID, code)
	assert.ErrorContains(t, err, "invalid or expired")
}

func TestOTPNewCodeSupersedesPrevious(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	otps := NewOTPService(db)

	first, firstCode, err := otps.CreateCode(user.ID, models.OTPChannelEmail, OTPPurposeLogin)
	require.NoError(t, err)

	second, secondCode, err := otps.CreateCode(user.ID, models.OTPChannelEmail, OTPPurposeLogin)
	require.NoError(t, err)

	_, err = otps.VerifyCode(first.ID, firstCode)
	assert.ErrorContains(t, err, "invalid or expired")

	verified, err := otps.VerifyCode(second.ID, secondCode)
	require.NoError(t, err)
	assert.True(t, verified.Used)
}

func TestOTPDifferentPurposesCoexist(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	otps := NewOTPService(db)

	login, loginCode, err := otps.CreateCode(user.ID, models.OTPChannelEmail, OTPPurposeLogin)
	require.NoError(t, err)

	_, _, err = otps.CreateCode(user.ID, models.OTPChannelEmail, OTPPurposeEnable2FA)
	require.NoError(t, err)

	// A 2FA enrollment code must not invalidate the login challenge
	verified, err := otps.VerifyCode(login.ID, loginCode)
	require.NoError(t, err)
	assert.True(t, verified.Used)
}

func TestOTPCleanup(t *testing.T) {
	db := newTestDB(t)
	user := seedClient(t, db)
	otps := NewOTPService(db)

	record, _, err := otps.CreateCode(user.ID, models.OTPChannelEmail, OTPPurposeLogin)
	require.NoError(t, err)
	_, _, err = otps.CreateCode(user.ID, models.OTPChannelSMS, OTPPurposeVerifyPhone)
	require.NoError(t, err)

	_, err = db.Exec(
		"UPDATE otp_codes SET expires_at = ? WHERE id = ?",
		time.Now().Add(-time.Hour), record.ID,
	)
	require.NoError(t, err)

	deleted, err := otps.CleanupExpiredCodes()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
