package store

import (
	"fmt"
	"time"

	"github.com/dnaclectic/lotline/internal/models"
	"gorm.io/gorm"
)

// EnqueueScheduled inserts a scheduled message unless one of the same
// kind already exists for the booking. The existence check is what keeps
// a redelivered payment webhook from double-enqueueing a nudge.
func (s *Store) EnqueueScheduled(msg *models.ScheduledMessage) error {
	var n int64
	err := s.db.Model(&models.ScheduledMessage{}).
		Where("booking_id = ? AND kind = ?", msg.BookingID, msg.Kind).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("store: check scheduled for booking %d: %w", msg.BookingID, err)
	}
	if n > 0 {
		return nil
	}
	if err := s.db.Create(msg).Error; err != nil {
		return fmt.Errorf("store: enqueue scheduled: %w", err)
	}
	return nil
}

// DueScheduled returns unsent messages whose send time has passed,
// oldest first, bounded by limit.
func (s *Store) DueScheduled(now time.Time, limit int) ([]models.ScheduledMessage, error) {
	var due []models.ScheduledMessage
	err := s.db.Where("sent_at IS NULL AND send_at <= ?", now).
		Order("send_at").Limit(limit).Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("store: due scheduled: %w", err)
	}
	return due, nil
}

// MarkScheduledSent sets the dispatched marker. Used for successful
// sends and for permanent failures; reason is empty on success.
func (s *Store) MarkScheduledSent(id uint, now time.Time, reason string) error {
	err := s.db.Model(&models.ScheduledMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sent_at":    now,
		"last_error": reason,
		"attempts":   gorm.Expr("attempts + 1"),
	}).Error
	if err != nil {
		return fmt.Errorf("store: mark scheduled %d sent: %w", id, err)
	}
	return nil
}

// RecordScheduledFailure records a transient failure and leaves sent_at
// null so the next poll retries.
func (s *Store) RecordScheduledFailure(id uint, reason string) error {
	err := s.db.Model(&models.ScheduledMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_error": reason,
		"attempts":   gorm.Expr("attempts + 1"),
	}).Error
	if err != nil {
		return fmt.Errorf("store: record scheduled %d failure: %w", id, err)
	}
	return nil
}

// DueUnsentCount returns how many scheduled messages are overdue.
func (s *Store) DueUnsentCount(now time.Time) (int64, error) {
	var n int64
	err := s.db.Model(&models.ScheduledMessage{}).
		Where("sent_at IS NULL AND send_at <= ?", now).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("store: due unsent count: %w", err)
	}
	return n, nil
}
