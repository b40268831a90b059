package voice

import (
	"context"
	stderrors "errors"
	"time"

	"medvoice/internal/models"
	"medvoice/pkg/elevenlabs"
	"medvoice/pkg/errors"
	"medvoice/pkg/logger"
	"medvoice/pkg/metrics"

	"go.uber.org/zap"
)

// CleanupCandidate is one submission whose provider voice is eligible for
// reclamation.
type CleanupCandidate struct {
	SubmissionID uint    `json:"submission_id"`
	DoctorName   string  `json:"doctor_name"`
	VoiceID      string  `json:"voice_id"`
	Status       string  `json:"status"`
	AgeHours     float64 `json:"age_hours"`
}

// CleanupFailure reports one submission whose deletion failed; its local state
// is left untouched.
type CleanupFailure struct {
	SubmissionID uint   `json:"submission_id"`
	VoiceID      string `json:"voice_id"`
	Error        string `json:"error"`
}

// CleanupReport is the full result of one cleanup pass. Partial success is
// expected and reported, never collapsed into a global failure.
type CleanupReport struct {
	DryRun     bool               `json:"dry_run"`
	Candidates []CleanupCandidate `json:"candidates"`
	Deleted    []uint             `json:"deleted,omitempty"`
	Failures   []CleanupFailure   `json:"failures,omitempty"`
}

// ActiveVoice is one row of the operator-facing voice inventory.
type ActiveVoice struct {
	SubmissionID       uint     `json:"submission_id"`
	DoctorName         string   `json:"doctor_name"`
	VoiceID            string   `json:"voice_id"`
	Status             string   `json:"status"`
	AgeHours           float64  `json:"age_hours"`
	GeneratedLanguages []string `json:"generated_languages"`
}

// Cleanup reclaims provider voice slots for submissions whose status matches
// statusFilter and whose last update is older than maxAge. In dry-run mode the
// provider is never called and no state changes; the would-be-deleted set is
// returned with computed ages.
func (s *Service) Cleanup(ctx context.Context, maxAge time.Duration, statusFilter []string, dryRun bool) (*CleanupReport, error) {
	if len(statusFilter) == 0 {
		statusFilter = []string{models.CloneStatusCompleted}
	}

	subs, err := s.repo.CleanupCandidates(ctx, maxAge, statusFilter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select cleanup candidates")
	}

	report := &CleanupReport{DryRun: dryRun, Candidates: make([]CleanupCandidate, 0, len(subs))}
	for _, sub := range subs {
		report.Candidates = append(report.Candidates, CleanupCandidate{
			SubmissionID: sub.ID,
			DoctorName:   sub.DoctorName,
			VoiceID:      sub.VoiceID(),
			Status:       sub.VoiceCloneStatus,
			AgeHours:     time.Since(sub.UpdatedAt).Hours(),
		})
	}
	if dryRun {
		return report, nil
	}

	for _, sub := range subs {
		if err := s.deleteVoice(ctx, &sub, "scheduled_cleanup"); err != nil {
			report.Failures = append(report.Failures, CleanupFailure{
				SubmissionID: sub.ID,
				VoiceID:      sub.VoiceID(),
				Error:        err.Error(),
			})
			continue
		}
		report.Deleted = append(report.Deleted, sub.ID)
	}
	return report, nil
}

// DeleteAllActive is the emergency escape valve: it deletes every non-deleted
// provider voice. It fails closed without the explicit confirmation flag.
func (s *Service) DeleteAllActive(ctx context.Context, confirmed bool) (*CleanupReport, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	subs, err := s.repo.ActiveVoices(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active voices")
	}

	report := &CleanupReport{Candidates: make([]CleanupCandidate, 0, len(subs))}
	for _, sub := range subs {
		report.Candidates = append(report.Candidates, CleanupCandidate{
			SubmissionID: sub.ID,
			DoctorName:   sub.DoctorName,
			VoiceID:      sub.VoiceID(),
			Status:       sub.VoiceCloneStatus,
			AgeHours:     time.Since(sub.UpdatedAt).Hours(),
		})
		if err := s.deleteVoice(ctx, &sub, "emergency_cleanup"); err != nil {
			report.Failures = append(report.Failures, CleanupFailure{
				SubmissionID: sub.ID,
				VoiceID:      sub.VoiceID(),
				Error:        err.Error(),
			})
			continue
		}
		report.Deleted = append(report.Deleted, sub.ID)
	}
	return report, nil
}

// DeleteForSubmission reclaims one submission's provider voice on operator
// request.
func (s *Service) DeleteForSubmission(ctx context.Context, submissionID uint) error {
	unlock := s.locks.lock(submissionID)
	defer unlock()

	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return errors.Wrapf(err, "submission %d not found", submissionID)
	}
	if sub.VoiceID() == "" || sub.VoiceCloneStatus == models.CloneStatusDeleted {
		return nil
	}
	return s.deleteVoice(ctx, sub, "manual_delete")
}

// deleteVoice calls the provider and reconciles local state. A provider 404
// means the slot is already free: local state still flips to deleted.
func (s *Service) deleteVoice(ctx context.Context, sub *models.Submission, reason string) error {
	err := s.provider.DeleteVoice(ctx, sub.VoiceID())
	notFound := false
	if err != nil {
		var apiErr *elevenlabs.APIError
		if stderrors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			notFound = true
		} else {
			if m := metrics.Global(); m != nil {
				m.RecordVoiceDeletion("failed")
			}
			return errors.Wrapf(err, "provider delete failed for voice %s", sub.VoiceID())
		}
	}

	if err := s.repo.SetCloneDeleted(ctx, sub.ID); err != nil {
		return errors.Wrapf(err, "failed to mark voice deleted for submission %d", sub.ID)
	}
	s.repo.AppendAudit(ctx, "submission", sub.ID, "voice_deleted", map[string]interface{}{
		"voice_id":  sub.VoiceID(),
		"reason":    reason,
		"not_found": notFound,
	})
	if m := metrics.Global(); m != nil {
		outcome := "deleted"
		if notFound {
			outcome = "already_gone"
		}
		m.RecordVoiceDeletion(outcome)
	}
	logger.Info("voice slot reclaimed",
		zap.Uint("submission_id", sub.ID),
		zap.String("voice_id", sub.VoiceID()),
		zap.String("reason", reason),
		zap.Bool("not_found", notFound))
	return nil
}

// ListActive is the read-only inventory of live provider voices, annotated
// with age and the languages already generated, for cleanup planning.
func (s *Service) ListActive(ctx context.Context) ([]ActiveVoice, error) {
	subs, err := s.repo.ActiveVoices(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active voices")
	}

	out := make([]ActiveVoice, 0, len(subs))
	for _, sub := range subs {
		langs, err := s.repo.CompletedLanguages(ctx, sub.ID)
		if err != nil {
			logger.Warn("failed to load generated languages",
				zap.Uint("submission_id", sub.ID), zap.Error(err))
		}
		out = append(out, ActiveVoice{
			SubmissionID:       sub.ID,
			DoctorName:         sub.DoctorName,
			VoiceID:            sub.VoiceID(),
			Status:             sub.VoiceCloneStatus,
			AgeHours:           time.Since(sub.UpdatedAt).Hours(),
			GeneratedLanguages: langs,
		})
	}
	return out, nil
}
