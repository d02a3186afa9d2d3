package store

import (
	"fmt"
	"time"

	"github.com/dnaclectic/lotline/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveConversation returns the active conversation for a phone, or nil
// when none exists.
func (s *Store) ActiveConversation(phone string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.Where("phone = ? AND active = ?", phone, true).First(&conv).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: active conversation for %s: %w", phone, err)
	}
	return &conv, nil
}

// CreateConversation deactivates any active conversation for the phone
// and creates a fresh one in the given state. Deactivate-then-create is
// how the single-active-per-phone invariant is enforced: the new writer
// always wins. A pending booking on the displaced conversation is
// abandoned so it stops holding a spot.
func (s *Store) CreateConversation(phone, state string, now time.Time) (*models.Conversation, error) {
	prior, err := s.ActiveConversation(phone)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		if err := s.AbandonPendingForConversation(prior.ID); err != nil {
			return nil, err
		}
	}
	if err := s.DeactivateActive(phone, "cancelled"); err != nil {
		return nil, err
	}

	conv := &models.Conversation{
		PublicID:      uuid.NewString(),
		Phone:         phone,
		State:         state,
		Active:        true,
		LastInboundAt: now,
	}
	if err := s.db.Create(conv).Error; err != nil {
		return nil, fmt.Errorf("store: create conversation for %s: %w", phone, err)
	}
	return conv, nil
}

// SaveConversation persists the full conversation record.
func (s *Store) SaveConversation(conv *models.Conversation) error {
	if err := s.db.Save(conv).Error; err != nil {
		return fmt.Errorf("store: save conversation %d: %w", conv.ID, err)
	}
	return nil
}

// ReloadConversation fetches a conversation by primary key. Used where a
// fresh snapshot is required instead of a possibly-stale in-memory copy.
func (s *Store) ReloadConversation(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, id).Error; err != nil {
		return nil, fmt.Errorf("store: reload conversation %d: %w", id, err)
	}
	return &conv, nil
}

// Deactivate moves a conversation to a terminal state and clears the
// active flag. The row is retained as audit history.
func (s *Store) Deactivate(conv *models.Conversation, terminalState string) error {
	conv.State = terminalState
	conv.Active = false
	return s.SaveConversation(conv)
}

// DeactivateActive force-terminates whatever active conversation the
// phone has, if any. No-op when there is none.
func (s *Store) DeactivateActive(phone, terminalState string) error {
	result := s.db.Model(&models.Conversation{}).
		Where("phone = ? AND active = ?", phone, true).
		Updates(map[string]interface{}{"active": false, "state": terminalState})
	if result.Error != nil {
		return fmt.Errorf("store: deactivate active for %s: %w", phone, result.Error)
	}
	return nil
}

// ActiveConversationCount returns how many conversations are in flight.
func (s *Store) ActiveConversationCount() (int64, error) {
	var n int64
	if err := s.db.Model(&models.Conversation{}).Where("active = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("store: active conversation count: %w", err)
	}
	return n, nil
}
