package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"kefystore-backend/internal/models"
)

const dispatchMaxAttempts = 3

// DispatchService drains the email and SMS queues in the background
type DispatchService struct {
	db    *sql.DB
	email *EmailService
	sms   *SMSService
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(db *sql.DB, email *EmailService, sms *SMSService) *DispatchService {
	return &DispatchService{db: db, email: email, sms: sms}
}

// Start drains both queues on the interval until stop is closed
func (s *DispatchService) Start(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.DrainEmailQueue(25); err != nil {
					log.Printf("email dispatch error: %v", err)
				}
				if err := s.DrainSMSQueue(25); err != nil {
					log.Printf("sms dispatch error: %v", err)
				}
			case <-stop:
				return
			}
		}
	}()
}

// DrainEmailQueue sends up to batchSize pending emails. A failed send burns
// an attempt; after three the message is marked failed and left for audit.
func (s *DispatchService) DrainEmailQueue(batchSize int) error {
	rows, err := s.db.Query(`
		SELECT id, recipient, subject, body, attempts FROM email_queue
		WHERE status = ? AND attempts < ?
		ORDER BY created_at ASC LIMIT ?
	`, models.QueueStatusPending, dispatchMaxAttempts, batchSize)
	if err != nil {
		return fmt.Errorf("failed to read email queue: %w", err)
	}

	type queued struct {
		id, recipient, subject, body string
		attempts                     int
	}
	var batch []queued
	for rows.Next() {
		var q queued
		if err := rows.Scan(&q.id, &q.recipient, &q.subject, &q.body, &q.attempts); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan queued email: %w", err)
		}
		batch = append(batch, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, q := range batch {
		sendErr := s.email.Send(q.recipient, q.subject, q.body)
		s.settle("email_queue", q.id, q.attempts, sendErr)
	}

	return nil
}

// DrainSMSQueue sends up to batchSize pending text messages
func (s *DispatchService) DrainSMSQueue(batchSize int) error {
	rows, err := s.db.Query(`
		SELECT id, recipient, message, attempts FROM sms_queue
		WHERE status = ? AND attempts < ?
		ORDER BY created_at ASC LIMIT ?
	`, models.QueueStatusPending, dispatchMaxAttempts, batchSize)
	if err != nil {
		return fmt.Errorf("failed to read sms queue: %w", err)
	}

	type queued struct {
		id, recipient, message string
		attempts               int
	}
	var batch []queued
	for rows.Next() {
		var q queued
		if err := rows.Scan(&q.id, &q.recipient, &q.message, &q.attempts); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan queued sms: %w", err)
		}
		batch = append(batch, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, q := range batch {
		sendErr := s.sms.Send(q.recipient, q.message)
		s.settle("sms_queue", q.id, q.attempts, sendErr)
	}

	return nil
}

// settle records the outcome of one delivery attempt
func (s *DispatchService) settle(table, id string, attempts int, sendErr error) {
	now := time.Now()
	if sendErr == nil {
		query := fmt.Sprintf("UPDATE %s SET status = ?, attempts = ?, sent_at = ? WHERE id = ?", table)
		if _, err := s.db.Exec(query, models.QueueStatusSent, attempts+1, now, id); err != nil {
			log.Printf("failed to mark %s entry sent: %v", table, err)
		}
		return
	}

	attempts++
	status := models.QueueStatusPending
	if attempts >= dispatchMaxAttempts {
		status = models.QueueStatusFailed
	}

	errMsg := sendErr.Error()
	query := fmt.Sprintf("UPDATE %s SET status = ?, attempts = ?, last_error = ? WHERE id = ?", table)
	if _, err := s.db.Exec(query, status, attempts, errMsg, id); err != nil {
		log.Printf("failed to record %s delivery failure: %v", table, err)
	}
}
