package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredFile is the metadata row of the database blob backend. Binary content
// is split across StoredFileChunk rows, GridFS-style, so a single large audio
// file never occupies one oversized row.
type StoredFile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	Size        int64     `gorm:"not null" json:"size"`
	OwnerID     string    `gorm:"size:100;index" json:"owner_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Chunks []StoredFileChunk `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

type StoredFileChunk struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoredFileID uuid.UUID `gorm:"type:uuid;not null;index" json:"stored_file_id"`
	Seq          int       `gorm:"not null" json:"seq"`
	Data         []byte    `gorm:"not null" json:"-"`
}

func (f *StoredFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (c *StoredFileChunk) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
