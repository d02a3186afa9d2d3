package store

import (
	"fmt"

	"github.com/dnaclectic/lotline/internal/models"
	"gorm.io/gorm"
)

// CreateBooking inserts a new booking row.
func (s *Store) CreateBooking(b *models.Booking) error {
	if err := s.db.Create(b).Error; err != nil {
		return fmt.Errorf("store: create booking: %w", err)
	}
	return nil
}

// SaveBooking persists the full booking record.
func (s *Store) SaveBooking(b *models.Booking) error {
	if err := s.db.Save(b).Error; err != nil {
		return fmt.Errorf("store: save booking %d: %w", b.ID, err)
	}
	return nil
}

// BookingByID fetches a booking by primary key.
func (s *Store) BookingByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.First(&b, id).Error; err != nil {
		return nil, fmt.Errorf("store: booking %d: %w", id, err)
	}
	return &b, nil
}

// BookingByCheckoutSession locates a booking by its stored checkout
// session id. Returns nil when no booking matches — a condition the
// payment webhook must absorb, not crash on.
func (s *Store) BookingByCheckoutSession(sessionID string) (*models.Booking, error) {
	var b models.Booking
	err := s.db.Where("checkout_session_id = ?", sessionID).First(&b).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: booking by session %s: %w", sessionID, err)
	}
	return &b, nil
}

// AbandonPendingForConversation marks a conversation's pending booking
// abandoned, if it has one. Called when a conversation is cancelled or
// expired so pending rows do not linger indefinitely.
func (s *Store) AbandonPendingForConversation(conversationID uint) error {
	result := s.db.Model(&models.Booking{}).
		Where("conversation_id = ? AND status = ?", conversationID, models.BookingPendingPayment).
		Update("status", models.BookingAbandoned)
	if result.Error != nil {
		return fmt.Errorf("store: abandon pending for conversation %d: %w", conversationID, result.Error)
	}
	return nil
}
