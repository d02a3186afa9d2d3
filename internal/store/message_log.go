package store

import (
	"fmt"

	"github.com/dnaclectic/lotline/internal/models"
)

// LogInbound durably records a received text before any state dispatch.
// The raw body is kept verbatim for debugging.
func (s *Store) LogInbound(phone, body, providerMessageID string, conversationID *uint) error {
	return s.logMessage(phone, models.DirectionInbound, body, providerMessageID, conversationID)
}

// LogOutbound records a text we sent, or attempted to send.
func (s *Store) LogOutbound(phone, body string, conversationID *uint) error {
	return s.logMessage(phone, models.DirectionOutbound, body, "", conversationID)
}

func (s *Store) logMessage(phone, direction, body, providerMessageID string, conversationID *uint) error {
	entry := models.MessageLog{
		Phone:             phone,
		Direction:         direction,
		Body:              body,
		ProviderMessageID: providerMessageID,
		ConversationID:    conversationID,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("store: log %s message for %s: %w", direction, phone, err)
	}
	return nil
}
