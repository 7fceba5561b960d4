package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"classcare-chatbot/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.ChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListBySessionID(sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var messages []model.ChatMessage
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC, id ASC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

// GetLastBySessionID returns the session's most recent message, nil when the
// session has none.
func (r *MessageRepository) GetLastBySessionID(sessionID string) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at DESC, id DESC").First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last message failed: %w", err)
	}
	return &msg, nil
}

// ListRecentBySessionID returns the newest limit messages in chronological
// order, for building bounded prompt history.
func (r *MessageRepository) ListRecentBySessionID(sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		return nil, nil
	}

	var messages []model.ChatMessage
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list recent messages failed: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) DeleteBySessionID(sessionID string) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&model.ChatMessage{}).Error; err != nil {
		return fmt.Errorf("delete session messages failed: %w", err)
	}
	return nil
}
