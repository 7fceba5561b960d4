package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message roles. Messages are immutable once created.
const (
	RoleHuman  = "human"
	RoleAI     = "ai"
	RoleSystem = "system"
)

// ChatMessage is a single turn in a chat session. Metadata is a free-form
// JSON object (e.g. the source chunks used to produce an AI answer).
type ChatMessage struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	SessionID string    `gorm:"type:char(36);not null;index" json:"session_id"`
	Role      string    `gorm:"size:10;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Metadata  string    `gorm:"type:json" json:"-"`
	CreatedAt time.Time `gorm:"type:datetime(6)" json:"created_at"` // microseconds; turn ordering depends on it
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// SetMetadata stores v as the message's JSON metadata.
func (m *ChatMessage) SetMetadata(v map[string]any) {
	if len(v) == 0 {
		m.Metadata = "{}"
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		m.Metadata = "{}"
		return
	}
	m.Metadata = string(b)
}

// MetadataMap returns the parsed metadata; empty map on parse error.
func (m *ChatMessage) MetadataMap() map[string]any {
	out := map[string]any{}
	if m.Metadata == "" {
		return out
	}
	_ = json.Unmarshal([]byte(m.Metadata), &out)
	return out
}
