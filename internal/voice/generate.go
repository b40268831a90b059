package voice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"medvoice/internal/models"
	"medvoice/pkg/errors"
	"medvoice/pkg/logger"
	"medvoice/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Per-language outcome states. "canceled" is distinct from a provider failure
// so operators can tell a dead context from a rejected conversion.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCanceled  = "canceled"
)

// Aggregate states for one fan-out run.
const (
	AggregateCompleted = "completed"
	AggregatePartial   = "partial"
	AggregateFailed    = "failed"
)

// LanguageOutcome is the per-language result callers always receive; partial
// completion is the expected common case.
type LanguageOutcome struct {
	Language  string `json:"language"`
	Status    string `json:"status"`
	FilePath  string `json:"file_path,omitempty"`
	GCSPath   string `json:"gcs_path,omitempty"`
	PublicURL string `json:"public_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GenerationResult is the full breakdown of one GenerateAllLanguages run.
type GenerationResult struct {
	SubmissionID uint              `json:"submission_id"`
	Aggregate    string            `json:"aggregate"`
	Outcomes     []LanguageOutcome `json:"outcomes"`
}

// GenerateAllLanguages converts every selected language's master script
// through the submission's cloned voice. Languages are processed sequentially
// and independently: one failure never aborts the rest, and exactly one
// GeneratedAudio row is written per language per run. The voice id is retained
// afterwards; reclamation is the lifecycle manager's job.
func (s *Service) GenerateAllLanguages(ctx context.Context, submissionID uint) (*GenerationResult, error) {
	unlock := s.locks.lock(submissionID)
	defer unlock()

	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, errors.Wrapf(err, "submission %d not found", submissionID)
	}
	if sub.VoiceID() == "" {
		return nil, ErrVoiceNotCloned
	}
	if len(sub.SelectedLanguages) == 0 {
		return nil, ErrNoLanguagesSelected
	}

	outDir := filepath.Join(s.opts.OutputDir, fmt.Sprintf("submission_%d", submissionID))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	// master temp files live until the whole loop finishes, even if some
	// languages failed
	var temps TempFiles
	defer temps.Cleanup()

	result := &GenerationResult{SubmissionID: submissionID}
	completed, failed := 0, 0

	for _, lang := range sub.SelectedLanguages {
		outcome := s.generateLanguage(ctx, sub, lang, outDir, &temps)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Status == OutcomeCompleted {
			completed++
		} else {
			failed++
		}
		if m := metrics.Global(); m != nil && outcome.Status != OutcomeCompleted {
			m.RecordConversion(lang, outcome.Status, 0)
		}
	}

	switch {
	case failed == 0:
		result.Aggregate = AggregateCompleted
	case completed == 0:
		result.Aggregate = AggregateFailed
	default:
		result.Aggregate = AggregatePartial
	}

	s.repo.AppendAudit(context.WithoutCancel(ctx), "submission", submissionID, "languages_generated", map[string]interface{}{
		"aggregate": result.Aggregate,
		"completed": completed,
		"failed":    failed,
	})
	logger.Info("language fan-out finished",
		zap.Uint("submission_id", submissionID),
		zap.String("aggregate", result.Aggregate),
		zap.Int("completed", completed),
		zap.Int("failed", failed))
	return result, nil
}

// generateLanguage attempts one language end to end and records exactly one
// GeneratedAudio row, terminal either way.
func (s *Service) generateLanguage(ctx context.Context, sub *models.Submission, lang, outDir string, temps *TempFiles) LanguageOutcome {
	if err := ctx.Err(); err != nil {
		return s.recordFailure(ctx, sub.ID, lang, nil, OutcomeCanceled, "canceled: "+err.Error())
	}

	master, err := s.repo.ActiveMaster(ctx, lang)
	if err != nil {
		return s.recordFailure(ctx, sub.ID, lang, nil, OutcomeFailed, (&NoMasterFoundError{Language: lang}).Error())
	}

	sourcePath, err := s.resolver.Resolve(ctx, master.FilePath, temps)
	if err != nil {
		return s.recordFailure(ctx, sub.ID, lang, &master.ID, OutcomeFailed, err.Error())
	}

	outPath := filepath.Join(outDir, fmt.Sprintf("%s_%s.mp3", lang, uuid.New().String()[:8]))
	start := time.Now()
	if err := s.provider.ConvertSpeechToSpeechStream(ctx, sub.VoiceID(), sourcePath, lang, outPath); err != nil {
		status := OutcomeFailed
		if ctx.Err() != nil {
			status = OutcomeCanceled
		}
		return s.recordFailure(ctx, sub.ID, lang, &master.ID, status, err.Error())
	}
	duration := time.Since(start)

	rec := &models.GeneratedAudio{
		SubmissionID:  sub.ID,
		LanguageCode:  lang,
		AudioMasterID: &master.ID,
		Status:        models.GeneratedStatusCompleted,
		FilePath:      outPath,
	}
	outcome := LanguageOutcome{Language: lang, Status: OutcomeCompleted, FilePath: outPath}

	// durable upload is best-effort: generation is the required outcome, a
	// failed upload degrades to the local path
	if s.opts.UploadGenerated && s.store != nil {
		if key, url, err := s.uploadArtifact(ctx, sub.ID, outPath); err != nil {
			logger.Warn("generated audio upload failed",
				zap.Uint("submission_id", sub.ID),
				zap.String("language", lang),
				zap.Error(err))
		} else {
			rec.GCSPath = &key
			rec.PublicURL = &url
			outcome.GCSPath = key
			outcome.PublicURL = url
		}
	}

	// the artifact exists on disk; its row must land even if the run's
	// context died right after the conversion finished
	if err := s.repo.CreateGeneratedAudio(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("failed to persist generated audio",
			zap.Uint("submission_id", sub.ID),
			zap.String("language", lang),
			zap.Error(err))
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	if m := metrics.Global(); m != nil {
		m.RecordConversion(lang, OutcomeCompleted, duration)
	}
	return outcome
}

// recordFailure writes the terminal failed row for one language and returns
// its outcome. errs here never abort sibling languages.
func (s *Service) recordFailure(ctx context.Context, submissionID uint, lang string, masterID *uint, status, message string) LanguageOutcome {
	rec := &models.GeneratedAudio{
		SubmissionID:  submissionID,
		LanguageCode:  lang,
		AudioMasterID: masterID,
		Status:        models.GeneratedStatusFailed,
		ErrorMessage:  &message,
	}
	// write through a fresh context: the row must land even when the run's
	// context is already canceled
	if err := s.repo.CreateGeneratedAudio(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("failed to persist generation failure",
			zap.Uint("submission_id", submissionID),
			zap.String("language", lang),
			zap.Error(err))
	}
	return LanguageOutcome{Language: lang, Status: status, Error: message}
}

func (s *Service) uploadArtifact(ctx context.Context, submissionID uint, localPath string) (key, url string, err error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", "", err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return "", "", err
	}

	key = fmt.Sprintf("generated/submission_%d/%s", submissionID, filepath.Base(localPath))
	if err := s.store.Write(ctx, key, f, st.Size(), "audio/mpeg"); err != nil {
		return "", "", err
	}
	return key, s.store.PublicURL(key), nil
}
