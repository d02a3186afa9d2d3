package models

import "time"

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// MessageLog records every text that crosses the SMS boundary, in both
// directions. The raw body is retained: the only channel to the driver is
// asynchronous text, so this log is the debugging record of what actually
// happened in a flow.
type MessageLog struct {
	ID                uint   `gorm:"primaryKey;autoIncrement"`
	Phone             string `gorm:"size:20;not null;index"`
	Direction         string `gorm:"size:10;not null"`
	Body              string `gorm:"type:text;not null"`
	ProviderMessageID string `gorm:"size:64"`
	ConversationID    *uint  `gorm:"index"`
	CreatedAt         time.Time
}
