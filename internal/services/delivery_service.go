package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/utils"
)

// DeliveryService resolves shipping fees from the delivery zone table
type DeliveryService struct {
	db          *sql.DB
	fallbackFee decimal.Decimal
}

// NewDeliveryService creates a new delivery service. Cities without a zone
// get the fallback fee.
func NewDeliveryService(db *sql.DB, fallbackFee decimal.Decimal) *DeliveryService {
	return &DeliveryService{db: db, fallbackFee: fallbackFee}
}

// FeeForCity returns the shipping fee and zone name for a city. Unknown
// cities get the fallback fee and no zone.
func (s *DeliveryService) FeeForCity(city string) (decimal.Decimal, *string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return s.fallbackFee, nil, nil
	}

	var feeStr, zone string
	err := s.db.QueryRow(
		"SELECT fee, zone FROM delivery_zones WHERE city = ? AND is_active = TRUE", city,
	).Scan(&feeStr, &zone)
	if err != nil {
		if err == sql.ErrNoRows {
			return s.fallbackFee, nil, nil
		}
		return decimal.Zero, nil, fmt.Errorf("failed to look up delivery zone: %w", err)
	}

	fee, err := decimal.NewFromString(feeStr)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("failed to parse delivery fee: %w", err)
	}

	return fee, &zone, nil
}

// ListZones returns all active delivery zones
func (s *DeliveryService) ListZones() ([]models.DeliveryZone, error) {
	rows, err := s.db.Query(`
		SELECT id, city, zone, fee, is_active, created_at, updated_at
		FROM delivery_zones WHERE is_active = TRUE ORDER BY city ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery zones: %w", err)
	}
	defer rows.Close()

	var zones []models.DeliveryZone
	for rows.Next() {
		var zone models.DeliveryZone
		var feeStr string
		err := rows.Scan(&zone.ID, &zone.City, &zone.Zone, &feeStr,
			&zone.IsActive, &zone.CreatedAt, &zone.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery zone: %w", err)
		}
		zone.Fee, err = decimal.NewFromString(feeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse delivery fee: %w", err)
		}
		zones = append(zones, zone)
	}

	return zones, rows.Err()
}

// CreateZone adds a delivery zone
func (s *DeliveryService) CreateZone(creation *models.DeliveryZoneCreation) (*models.DeliveryZone, error) {
	if err := utils.ValidateStruct(creation); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	fee, err := decimal.NewFromString(creation.Fee)
	if err != nil || fee.IsNegative() {
		return nil, errors.New("invalid delivery fee")
	}

	now := time.Now()
	zone := &models.DeliveryZone{
		ID:        uuid.New().String(),
		City:      strings.TrimSpace(creation.City),
		Zone:      strings.TrimSpace(creation.Zone),
		Fee:       fee,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.Exec(`
		INSERT INTO delivery_zones (id, city, zone, fee, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, zone.ID, zone.City, zone.Zone, zone.Fee.String(), zone.IsActive, zone.CreatedAt, zone.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery zone: %w", err)
	}

	return zone, nil
}

// DeactivateZone disables a delivery zone without losing its history
func (s *DeliveryService) DeactivateZone(zoneID string) error {
	result, err := s.db.Exec(
		"UPDATE delivery_zones SET is_active = FALSE, updated_at = ? WHERE id = ?",
		time.Now(), zoneID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate delivery zone: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivate result: %w", err)
	}
	if rows == 0 {
		return errors.New("delivery zone not found")
	}

	return nil
}
