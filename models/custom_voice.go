package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Custom voice lifecycle states.
const (
	VoiceUploaded   = "uploaded"
	VoiceProcessing = "processing"
	VoiceReady      = "ready"
	VoiceFailed     = "failed"
)

type CustomVoice struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`

	// Voice identifier at the external provider (ElevenLabs voice_id, RVC model id).
	VoiceID  string `gorm:"size:100" json:"voice_id"`
	Provider string `gorm:"size:20;not null;default:'elevenlabs'" json:"provider"` // elevenlabs | playht | rvc | custom

	SampleFiles []string `gorm:"serializer:json" json:"sample_files,omitempty"`

	// Stored sample audio, when kept server-side.
	AudioFileID   string `gorm:"size:100" json:"audio_file_id,omitempty"` // blob store key
	AudioFileName string `gorm:"size:255" json:"audio_file_name,omitempty"`
	AudioFileSize int64  `json:"audio_file_size,omitempty"`
	StorageType   string `gorm:"size:20" json:"storage_type,omitempty"`

	Duration   float64 `json:"duration"`
	Format     string  `gorm:"size:10" json:"format"` // mp3 | wav | ogg | m4a
	SampleRate int     `gorm:"default:44100" json:"sample_rate"`

	Status          string `gorm:"size:20;default:'uploaded'" json:"status"`
	ProcessingError string `gorm:"type:text" json:"processing_error,omitempty"`

	Gender   string `gorm:"size:10;default:'unknown'" json:"gender"`
	Language string `gorm:"size:20;default:'en-US'" json:"language"`
	Accent   string `gorm:"size:50" json:"accent,omitempty"`

	TimesUsed  int        `gorm:"default:0" json:"times_used"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	IsDefault  bool       `gorm:"default:false" json:"is_default"`
	Tags       []string   `gorm:"serializer:json" json:"tags,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *CustomVoice) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
