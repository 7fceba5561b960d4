package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"classcare-chatbot/internal/model"
)

type MemoryRepository struct {
	db *gorm.DB
}

func NewMemoryRepository(db *gorm.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// Upsert writes the memory snapshot for a session, replacing any previous
// snapshot for the same session.
func (r *MemoryRepository) Upsert(memory *model.ConversationMemory) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"memory_data", "updated_at"}),
	}).Create(memory).Error; err != nil {
		return fmt.Errorf("upsert conversation memory failed: %w", err)
	}
	return nil
}

func (r *MemoryRepository) GetBySessionID(sessionID string) (*model.ConversationMemory, error) {
	var memory model.ConversationMemory
	if err := r.db.Where("session_id = ?", sessionID).First(&memory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query conversation memory failed: %w", err)
	}
	return &memory, nil
}

func (r *MemoryRepository) DeleteBySessionID(sessionID string) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&model.ConversationMemory{}).Error; err != nil {
		return fmt.Errorf("delete conversation memory failed: %w", err)
	}
	return nil
}
