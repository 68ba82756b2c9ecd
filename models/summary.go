package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Summary struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	DocumentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	Document    Document  `gorm:"constraint:OnDelete:CASCADE;" json:"document,omitempty"`
	SummaryText string    `gorm:"type:text" json:"summary_text"`
	WordCount   int       `json:"word_count"`
	// Summary words / document words. 0 when either count is missing.
	CompressionRatio float64   `json:"compression_ratio"`
	ReadingTime      int       `json:"reading_time"` // minutes at 200 wpm
	Status           string    `gorm:"size:20;default:'pending'" json:"processing_status"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Summary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
