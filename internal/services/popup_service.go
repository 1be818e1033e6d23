package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/utils"
)

// PopupService manages storefront popups and per-user acknowledgements
type PopupService struct {
	db *sql.DB
}

// NewPopupService creates a new popup service
func NewPopupService(db *sql.DB) *PopupService {
	return &PopupService{db: db}
}

// CreatePopup creates a popup
func (s *PopupService) CreatePopup(creation *models.PopupCreation) (*models.Popup, error) {
	if err := utils.ValidateStruct(creation); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if creation.StartsAt != nil && creation.EndsAt != nil && creation.EndsAt.Before(*creation.StartsAt) {
		return nil, errors.New("popup cannot end before it starts")
	}

	now := time.Now()
	popup := &models.Popup{
		ID:        uuid.New().String(),
		Title:     utils.SanitizeString(creation.Title),
		Body:      utils.SanitizeString(creation.Body),
		Kind:      creation.Kind,
		ImageURL:  creation.ImageURL,
		LinkURL:   creation.LinkURL,
		IsActive:  true,
		StartsAt:  creation.StartsAt,
		EndsAt:    creation.EndsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.Exec(`
		INSERT INTO popups (id, title, body, kind, image_url, link_url, is_active, starts_at, ends_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, popup.ID, popup.Title, popup.Body, popup.Kind, popup.ImageURL, popup.LinkURL,
		popup.IsActive, popup.StartsAt, popup.EndsAt, popup.CreatedAt, popup.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create popup: %w", err)
	}

	return popup, nil
}

// ActivePopupsForUser returns live popups the user has not acknowledged yet
func (s *PopupService) ActivePopupsForUser(userID string) ([]models.Popup, error) {
	now := time.Now()
	rows, err := s.db.Query(`
		SELECT id, title, body, kind, image_url, link_url, is_active, starts_at, ends_at, created_at, updated_at
		FROM popups
		WHERE is_active = TRUE
		  AND (starts_at IS NULL OR starts_at <= ?)
		  AND (ends_at IS NULL OR ends_at >= ?)
		  AND id NOT IN (SELECT popup_id FROM popup_acks WHERE user_id = ?)
		ORDER BY created_at DESC
	`, now, now, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list popups: %w", err)
	}
	defer rows.Close()

	return scanPopups(rows)
}

// ActivePopups returns live popups for anonymous visitors
func (s *PopupService) ActivePopups() ([]models.Popup, error) {
	now := time.Now()
	rows, err := s.db.Query(`
		SELECT id, title, body, kind, image_url, link_url, is_active, starts_at, ends_at, created_at, updated_at
		FROM popups
		WHERE is_active = TRUE
		  AND (starts_at IS NULL OR starts_at <= ?)
		  AND (ends_at IS NULL OR ends_at >= ?)
		ORDER BY created_at DESC
	`, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list popups: %w", err)
	}
	defer rows.Close()

	return scanPopups(rows)
}

// Acknowledge records the user's response to a popup. Each user responds to
// a popup once; a second acknowledgement is rejected.
func (s *PopupService) Acknowledge(popupID, userID string, action models.PopupAction) (*models.PopupAck, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM popups WHERE id = ?", popupID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check popup: %w", err)
	}
	if exists == 0 {
		return nil, errors.New("popup not found")
	}

	ack := &models.PopupAck{
		ID:        uuid.New().String(),
		PopupID:   popupID,
		UserID:    userID,
		Action:    action,
		CreatedAt: time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO popup_acks (id, popup_id, user_id, action, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, ack.ID, ack.PopupID, ack.UserID, ack.Action, ack.CreatedAt)
	if err != nil {
		// UNIQUE(popup_id, user_id) turns a replay into an error
		return nil, errors.New("popup already acknowledged")
	}

	return ack, nil
}

// DeactivatePopup stops showing a popup
func (s *PopupService) DeactivatePopup(popupID string) error {
	result, err := s.db.Exec(
		"UPDATE popups SET is_active = FALSE, updated_at = ? WHERE id = ?",
		time.Now(), popupID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate popup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivate result: %w", err)
	}
	if rows == 0 {
		return errors.New("popup not found")
	}

	return nil
}

func scanPopups(rows *sql.Rows) ([]models.Popup, error) {
	var popups []models.Popup
	for rows.Next() {
		var popup models.Popup
		err := rows.Scan(&popup.ID, &popup.Title, &popup.Body, &popup.Kind,
			&popup.ImageURL, &popup.LinkURL, &popup.IsActive,
			&popup.StartsAt, &popup.EndsAt, &popup.CreatedAt, &popup.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan popup: %w", err)
		}
		popups = append(popups, popup)
	}
	return popups, rows.Err()
}
