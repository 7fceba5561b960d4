package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"classcare-chatbot/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.ChatSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) ListByUserID(userID uint) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) GetByIDAndUserID(sessionID string, userID uint) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Touch(sessionID string) error {
	if err := r.db.Model(&model.ChatSession{}).Where("id = ?", sessionID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
		return fmt.Errorf("touch session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) UpdateTitle(sessionID, title string) error {
	if err := r.db.Model(&model.ChatSession{}).Where("id = ?", sessionID).
		Update("title", title).Error; err != nil {
		return fmt.Errorf("update session title failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteByIDAndUserID(sessionID string, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).Delete(&model.ChatSession{}).Error; err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	return nil
}
