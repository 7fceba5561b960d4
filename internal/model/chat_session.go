package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatSession is a conversation thread owning an ordered sequence of messages.
type ChatSession struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"` // 0 = anonymous
	Title     string    `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
