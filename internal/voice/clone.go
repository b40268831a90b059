package voice

import (
	"context"
	"fmt"
	"strings"

	"medvoice/pkg/errors"
	"medvoice/pkg/logger"
	"medvoice/pkg/metrics"

	"go.uber.org/zap"
)

// CloneForSubmission drives one submission from "no clone" to "cloned".
//
// State machine: pending|failed -> in_progress -> completed|failed. The
// in_progress transition is persisted before the provider call so a crash
// mid-clone shows up as stuck-in-progress rather than silently pending. On
// failure no voice id is ever persisted. A submission that already completed
// returns AlreadyClonedError, which callers treat as a no-op.
func (s *Service) CloneForSubmission(ctx context.Context, submissionID uint) (string, error) {
	unlock := s.locks.lock(submissionID)
	defer unlock()

	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return "", errors.Wrapf(err, "submission %d not found", submissionID)
	}

	if sub.HasClonedVoice() {
		return "", &AlreadyClonedError{VoiceID: sub.VoiceID()}
	}

	var temps TempFiles
	defer temps.Cleanup()

	refs := sub.AudioPath.Refs()
	var samples []string
	for _, ref := range refs {
		path, err := s.resolver.Resolve(ctx, ref, &temps)
		if err != nil {
			logger.Warn("audio sample unresolvable",
				zap.Uint("submission_id", submissionID),
				zap.String("ref", ref),
				zap.Error(err))
			continue
		}
		samples = append(samples, path)
	}
	if len(samples) == 0 {
		s.failClone(ctx, submissionID, ErrNoAudioSamples.Error())
		return "", ErrNoAudioSamples
	}

	if err := s.repo.SetCloneInProgress(ctx, submissionID); err != nil {
		return "", errors.Wrap(err, "failed to mark clone in progress")
	}

	voiceName := cloneVoiceName(sub.DoctorName, submissionID)
	description := fmt.Sprintf("Cloned voice for %s (submission %d)", sub.DoctorName, submissionID)

	voiceID, err := s.provider.CloneVoice(ctx, voiceName, samples, description)
	if err != nil {
		s.failClone(ctx, submissionID, err.Error())
		return "", errors.Wrapf(err, "voice clone failed for submission %d", submissionID)
	}

	if err := s.repo.SetCloneCompleted(ctx, submissionID, voiceID); err != nil {
		// the provider-side voice exists but we could not record it; surface
		// the id in the error so an operator can reconcile manually
		return "", errors.Wrapf(err, "clone succeeded (voice %s) but persisting it failed", voiceID)
	}

	s.repo.AppendAudit(ctx, "submission", submissionID, "voice_cloned", map[string]interface{}{
		"voice_id":   voiceID,
		"voice_name": voiceName,
		"samples":    len(samples),
	})
	if m := metrics.Global(); m != nil {
		m.RecordClone("completed")
	}
	logger.Info("voice cloned",
		zap.Uint("submission_id", submissionID),
		zap.String("voice_id", voiceID))
	return voiceID, nil
}

func (s *Service) failClone(ctx context.Context, submissionID uint, message string) {
	if err := s.repo.SetCloneFailed(ctx, submissionID, message); err != nil {
		logger.Error("failed to persist clone failure",
			zap.Uint("submission_id", submissionID),
			zap.Error(err))
	}
	s.repo.AppendAudit(ctx, "submission", submissionID, "voice_clone_failed", map[string]interface{}{
		"error": message,
	})
	if m := metrics.Global(); m != nil {
		m.RecordClone("failed")
	}
}

// cloneVoiceName builds a deterministic, human-traceable provider-side voice
// name so operators can correlate voices back to submissions.
func cloneVoiceName(doctorName string, submissionID uint) string {
	name := strings.TrimSpace(doctorName)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '_'
		default:
			return -1
		}
	}, name)
	if name == "" {
		name = "doctor"
	}
	return fmt.Sprintf("%s_submission_%d", name, submissionID)
}
