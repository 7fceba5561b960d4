package model

import "time"

// ConversationMemory is an optional persisted JSON blob per session. The
// current answer pipeline does not read it; it exists for future memory
// strategies.
type ConversationMemory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"type:char(36);not null;uniqueIndex" json:"session_id"`
	MemoryData string    `gorm:"type:json" json:"memory_data"`
	UpdatedAt  time.Time `json:"updated_at"`
}
