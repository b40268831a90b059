package models

import "time"

// Voice clone lifecycle states for a submission.
const (
	CloneStatusPending    = "pending"
	CloneStatusInProgress = "in_progress"
	CloneStatusCompleted  = "completed"
	CloneStatusFailed     = "failed"
	CloneStatusDeleted    = "deleted"
)

// Submission is one doctor's campaign entry. Only the voice fields are mutated
// by the pipeline; the row itself is never deleted.
type Submission struct {
	ID         uint   `gorm:"primaryKey"`
	DoctorName string `gorm:"size:255"`
	PhotoPath  string `gorm:"size:1024"`

	// ordered list of voice sample references; legacy rows may hold a bare string
	AudioPath         AudioSourceList `gorm:"type:text"`
	SelectedLanguages LanguageList    `gorm:"type:text"`

	ElevenLabsVoiceID *string `gorm:"column:elevenlabs_voice_id;size:255"`
	VoiceCloneStatus  string  `gorm:"size:32;default:pending"`
	VoiceCloneError   *string `gorm:"type:text"`

	GeneratedAudios []GeneratedAudio `gorm:"foreignKey:SubmissionID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoiceID returns the provider voice id, "" when none is persisted.
func (s *Submission) VoiceID() string {
	if s.ElevenLabsVoiceID == nil {
		return ""
	}
	return *s.ElevenLabsVoiceID
}

// HasClonedVoice reports whether the submission holds a completed clone.
func (s *Submission) HasClonedVoice() bool {
	return s.VoiceCloneStatus == CloneStatusCompleted && s.VoiceID() != ""
}
