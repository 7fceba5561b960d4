package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is an uploaded file whose text has been (or will be) chunked and
// embedded into the vector store. The ID is stamped into every chunk's
// metadata so that deleting the document can remove exactly its chunks.
type Document struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	FilePath   string    `gorm:"size:512;not null" json:"file_path"`
	FileType   string    `gorm:"size:50;not null" json:"file_type"`
	UploadedBy uint      `gorm:"index" json:"uploaded_by"` // 0 = anonymous
	Processed  bool      `gorm:"not null;default:false" json:"processed"`
	NumChunks  int       `gorm:"not null;default:0" json:"num_chunks"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
