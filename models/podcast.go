package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Voice providers the synthesis dispatch knows about.
const (
	ProviderAzure   = "azure"
	ProviderGoogle  = "google"
	ProviderBrowser = "browser"
	ProviderMock    = "mock"
)

// Podcast source types.
const (
	SourceFullDocument = "full_document"
	SourceSummary      = "summary"
)

// BrowserAudioSentinel marks podcasts whose audio is synthesized client-side.
const BrowserAudioSentinel = "browser-tts"

type VoiceSettings struct {
	Voice  string  `gorm:"size:100" json:"voice"`
	Speed  float64 `gorm:"default:1.0" json:"speed"`
	Pitch  float64 `gorm:"default:1.0" json:"pitch"`
	Volume float64 `gorm:"default:1.0" json:"volume"`
}

type Podcast struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User       `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	DocumentID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"document_id"`
	Document    Document   `gorm:"constraint:OnDelete:CASCADE;" json:"document,omitempty"`
	SummaryID   *uuid.UUID `gorm:"type:uuid;index" json:"summary_id,omitempty"`
	Summary     *Summary   `json:"summary,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`

	AudioURL       string `gorm:"type:text" json:"audio_url"`
	AudioText      string `gorm:"type:text" json:"audio_text,omitempty"` // source text kept for browser synthesis
	AudioSignedURL string `gorm:"type:text" json:"audio_signed_url,omitempty"`
	GCSPath        string `gorm:"type:text" json:"gcs_path,omitempty"`
	StorageType    string `gorm:"size:20;default:'local'" json:"storage_type"` // local | gcs | gridfs | supabase | browser
	AudioSize      int64  `json:"audio_size"`
	Duration       int    `json:"duration"` // seconds

	VoiceProvider string        `gorm:"size:30;not null" json:"voice_provider"`
	VoiceSettings VoiceSettings `gorm:"embedded;embeddedPrefix:voice_" json:"voice_settings"`

	CustomVoiceID     *uuid.UUID `gorm:"type:uuid" json:"custom_voice_id,omitempty"`
	ConvertedAudioURL string     `gorm:"type:text" json:"converted_audio_url,omitempty"`
	ConversionStatus  string     `gorm:"size:20;default:'none'" json:"conversion_status"`

	SourceType string    `gorm:"size:20;not null" json:"source_type"` // full_document | summary
	Status     string    `gorm:"size:20;default:'pending'" json:"processing_status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Podcast) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
