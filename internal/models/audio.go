package models

import "time"

// AudioMaster is the canonical per-language script recording. The pipeline
// only reads it; mutation belongs to the admin surface. At most one active
// master should exist per language, the pipeline takes the most recent one.
type AudioMaster struct {
	ID           uint   `gorm:"primaryKey"`
	LanguageCode string `gorm:"size:16;index"`
	FilePath     string `gorm:"size:1024"` // local path or remote reference
	IsActive     bool   `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Generation outcome states. The pipeline writes only terminal states.
const (
	GeneratedStatusCompleted = "completed"
	GeneratedStatusFailed    = "failed"
)

// GeneratedAudio is one outcome per (submission, language) attempt. Rows are
// insert-only; repeated runs accumulate and the latest row wins downstream.
type GeneratedAudio struct {
	ID            uint   `gorm:"primaryKey"`
	SubmissionID  uint   `gorm:"index:idx_generated_sub_lang"`
	LanguageCode  string `gorm:"size:16;index:idx_generated_sub_lang"`
	AudioMasterID *uint

	Status       string  `gorm:"size:32"`
	FilePath     string  `gorm:"size:1024"`
	GCSPath      *string `gorm:"size:1024"`
	PublicURL    *string `gorm:"size:1024"`
	ErrorMessage *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
