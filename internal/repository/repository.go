package repository

import (
	"context"
	"fmt"
	"time"

	"medvoice/internal/models"
	"medvoice/pkg/cache"
	"medvoice/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repository is the typed persistence boundary for the pipeline. JSON column
// shapes are normalized by the model types; nothing above this layer parses
// raw column text.
type Repository struct {
	db    *gorm.DB
	cache cache.Cache
}

const masterCacheTTL = time.Minute

func New(db *gorm.DB, c cache.Cache) *Repository {
	return &Repository{db: db, cache: c}
}

// AutoMigrate creates the pipeline tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Submission{},
		&models.AudioMaster{},
		&models.GeneratedAudio{},
		&models.AuditLog{},
	)
}

func (r *Repository) GetSubmission(ctx context.Context, id uint) (*models.Submission, error) {
	var sub models.Submission
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// SetCloneInProgress persists the transition before the external call, so a
// crash mid-clone is observable as stuck-in-progress.
func (r *Repository) SetCloneInProgress(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"voice_clone_status": models.CloneStatusInProgress,
			"voice_clone_error":  nil,
		}).Error
}

func (r *Repository) SetCloneCompleted(ctx context.Context, id uint, voiceID string) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"elevenlabs_voice_id": voiceID,
			"voice_clone_status":  models.CloneStatusCompleted,
			"voice_clone_error":   nil,
		}).Error
}

// SetCloneFailed records the failure. No voice id is ever written here.
func (r *Repository) SetCloneFailed(ctx context.Context, id uint, message string) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"voice_clone_status": models.CloneStatusFailed,
			"voice_clone_error":  message,
		}).Error
}

// SetCloneDeleted marks the provider-side voice as reclaimed. The voice id
// column is kept for audit trails.
func (r *Repository) SetCloneDeleted(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).
		Update("voice_clone_status", models.CloneStatusDeleted).Error
}

// ActiveMaster returns the most-recently-created active master for a language.
// Lookups are cached briefly; masters change rarely and the fan-out hits this
// once per language per run.
func (r *Repository) ActiveMaster(ctx context.Context, languageCode string) (*models.AudioMaster, error) {
	key := "audio_master:" + languageCode
	if r.cache != nil {
		if v, ok := r.cache.Get(ctx, key); ok {
			if m, ok := v.(*models.AudioMaster); ok {
				return m, nil
			}
		}
	}

	var master models.AudioMaster
	err := r.db.WithContext(ctx).
		Where("language_code = ? AND is_active = ?", languageCode, true).
		Order("created_at DESC").
		First(&master).Error
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, &master, masterCacheTTL); err != nil {
			logger.Warn("audio master cache set failed", zap.Error(err))
		}
	}
	return &master, nil
}

func (r *Repository) CreateGeneratedAudio(ctx context.Context, rec *models.GeneratedAudio) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// LatestPerLanguage returns the winning (most recent) generated row for each
// language of a submission.
func (r *Repository) LatestPerLanguage(ctx context.Context, submissionID uint) (map[string]models.GeneratedAudio, error) {
	var rows []models.GeneratedAudio
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	latest := make(map[string]models.GeneratedAudio, len(rows))
	for _, row := range rows {
		latest[row.LanguageCode] = row
	}
	return latest, nil
}

// CompletedLanguages returns the languages with at least one completed artifact.
func (r *Repository) CompletedLanguages(ctx context.Context, submissionID uint) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&models.GeneratedAudio{}).
		Where("submission_id = ? AND status = ?", submissionID, models.GeneratedStatusCompleted).
		Distinct().
		Pluck("language_code", &codes).Error
	return codes, err
}

// AppendAudit records an action. Audit failures are logged, never surfaced;
// the audit trail must not mask the primary operation's outcome.
func (r *Repository) AppendAudit(ctx context.Context, entityType string, entityID uint, action string, details map[string]interface{}) {
	entry := models.NewAuditLog(entityType, entityID, action, details)
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Warn("audit log write failed",
			zap.String("entity_type", entityType),
			zap.Uint("entity_id", entityID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// CleanupCandidates returns submissions with a voice id, a status in statuses,
// last updated more than maxAge ago.
func (r *Repository) CleanupCandidates(ctx context.Context, maxAge time.Duration, statuses []string) ([]models.Submission, error) {
	if len(statuses) == 0 {
		return nil, fmt.Errorf("at least one status filter is required")
	}
	cutoff := time.Now().Add(-maxAge)
	var subs []models.Submission
	err := r.db.WithContext(ctx).
		Where("elevenlabs_voice_id IS NOT NULL AND voice_clone_status IN ? AND updated_at < ?", statuses, cutoff).
		Order("updated_at ASC").
		Find(&subs).Error
	return subs, err
}

// ActiveVoices returns every submission holding a non-deleted provider voice.
func (r *Repository) ActiveVoices(ctx context.Context) ([]models.Submission, error) {
	var subs []models.Submission
	err := r.db.WithContext(ctx).
		Where("elevenlabs_voice_id IS NOT NULL AND voice_clone_status <> ?", models.CloneStatusDeleted).
		Order("updated_at ASC").
		Find(&subs).Error
	return subs, err
}
