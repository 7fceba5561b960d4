package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"classcare-chatbot/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Update(doc *model.Document) error {
	if err := r.db.Save(doc).Error; err != nil {
		return fmt.Errorf("update document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query document by id failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List() ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Order("uploaded_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
