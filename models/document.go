package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Processing states shared by Document, Summary and Podcast.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Document struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User          User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	OriginalName  string    `gorm:"size:255;not null" json:"original_name"`
	FileType      string    `gorm:"size:10;not null" json:"file_type"` // pdf | docx | txt
	FileSize      int64     `json:"file_size"`
	FilePath      string    `gorm:"type:text" json:"file_path"` // backend object key
	FileURL       string    `gorm:"type:text" json:"file_url"`
	GCSPath       string    `gorm:"type:text" json:"gcs_path,omitempty"`
	StorageType   string    `gorm:"size:20;default:'local'" json:"storage_type"` // local | gcs | gridfs | supabase
	ExtractedText string    `gorm:"type:text;not null" json:"extracted_text"`
	WordCount     int       `gorm:"not null" json:"word_count"`
	Status        string    `gorm:"size:20;default:'pending'" json:"processing_status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Summaries []Summary `json:"summaries,omitempty"`
	Podcasts  []Podcast `json:"podcasts,omitempty"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
