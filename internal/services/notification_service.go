package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"kefystore-backend/internal/models"
)

// NotificationService records in-app notifications and queues outbound
// email and SMS. Delivery is best effort and never blocks the caller.
type NotificationService struct {
	db *sql.DB
	ws *WebSocketService
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *sql.DB, ws *WebSocketService) *NotificationService {
	return &NotificationService{db: db, ws: ws}
}

// Notify stores an in-app notification and pushes it to the user's live feed
func (s *NotificationService) Notify(userID string, nType models.NotificationType, title, message string, actionURL *string) (*models.Notification, error) {
	notification := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      nType,
		Title:     title,
		Message:   message,
		IsRead:    false,
		ActionURL: actionURL,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO notifications (id, user_id, type, title, message, is_read, action_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, notification.ID, notification.UserID, notification.Type, notification.Title,
		notification.Message, notification.IsRead, notification.ActionURL, notification.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.ws != nil {
		s.ws.SendToUser(userID, WebSocketMessage{
			Type: "notification",
			Data: notification,
		})
	}

	return notification, nil
}

// QueueEmail enqueues an email for the dispatch loop
func (s *NotificationService) QueueEmail(recipient, subject, body string) error {
	_, err := s.db.Exec(`
		INSERT INTO email_queue (id, recipient, subject, body, status, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, uuid.New().String(), recipient, subject, body, models.QueueStatusPending, time.Now())
	if err != nil {
		return fmt.Errorf("failed to queue email: %w", err)
	}
	return nil
}

// QueueSMS enqueues a text message for the dispatch loop
func (s *NotificationService) QueueSMS(recipient, message string) error {
	_, err := s.db.Exec(`
		INSERT INTO sms_queue (id, recipient, message, status, attempts, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, uuid.New().String(), recipient, message, models.QueueStatusPending, time.Now())
	if err != nil {
		return fmt.Errorf("failed to queue SMS: %w", err)
	}
	return nil
}

// ListForUser returns a user's notifications, newest first
func (s *NotificationService) ListForUser(userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, user_id, type, title, message, is_read, action_url, created_at
		FROM notifications WHERE user_id = ?
	`
	args := []interface{}{userID}
	if unreadOnly {
		query += " AND is_read = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.IsRead, &n.ActionURL, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(notificationID, userID string) error {
	result, err := s.db.Exec(
		"UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return errors.New("notification not found")
	}

	return nil
}

// MarkAllRead marks every notification of the user as read
func (s *NotificationService) MarkAllRead(userID string) (int64, error) {
	result, err := s.db.Exec(
		"UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE",
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(notificationID, userID string) error {
	result, err := s.db.Exec(
		"DELETE FROM notifications WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return errors.New("notification not found")
	}

	return nil
}

// UnreadCount returns the number of unread notifications for a user
func (s *NotificationService) UnreadCount(userID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// NotifyOrderStatus tells the buyer about an order status change and queues
// the email copy. Failures here never bubble up to the order workflow.
func (s *NotificationService) NotifyOrderStatus(userID, email, orderNumber string, status models.OrderStatus) {
	title := fmt.Sprintf("Commande %s", orderNumber)
	message := fmt.Sprintf("Votre commande %s est maintenant : %s", orderNumber, status)

	if _, err := s.Notify(userID, models.NotificationTypeOrder, title, message, nil); err != nil {
		log.Printf("notification error for order %s: %v", orderNumber, err)
	}
	if email != "" {
		if err := s.QueueEmail(email, title, message); err != nil {
			log.Printf("email queue error for order %s: %v", orderNumber, err)
		}
	}
}
