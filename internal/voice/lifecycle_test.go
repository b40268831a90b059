package voice

import (
	"context"
	"errors"
	"testing"
	"time"

	"medvoice/internal/models"
	"medvoice/pkg/elevenlabs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedVoice creates a submission with a live provider voice, backdated so it
// is eligible for age-based cleanup.
func seedVoice(t *testing.T, env *testEnv, voiceID, status string, age time.Duration) *models.Submission {
	t.Helper()
	sub := env.createSubmission(t, &models.Submission{
		DoctorName:        "Dr. " + voiceID,
		ElevenLabsVoiceID: &voiceID,
		VoiceCloneStatus:  status,
	})
	require.NoError(t, env.db.Model(&models.Submission{}).Where("id = ?", sub.ID).
		UpdateColumn("updated_at", time.Now().Add(-age)).Error)
	return sub
}

func TestCleanup(t *testing.T) {
	t.Run("dry run never calls the provider or mutates state", func(t *testing.T) {
		env := newTestEnv(t)
		old := seedVoice(t, env, "v-old", models.CloneStatusCompleted, 48*time.Hour)
		seedVoice(t, env, "v-fresh", models.CloneStatusCompleted, time.Hour)

		report, err := env.service.Cleanup(context.Background(), 24*time.Hour, nil, true)
		require.NoError(t, err)
		assert.True(t, report.DryRun)
		require.Len(t, report.Candidates, 1)
		assert.Equal(t, old.ID, report.Candidates[0].SubmissionID)
		assert.InDelta(t, 48, report.Candidates[0].AgeHours, 1)
		assert.Empty(t, report.Deleted)

		assert.Equal(t, 0, env.provider.deleteCalls)
		assert.Equal(t, models.CloneStatusCompleted, env.reload(t, old.ID).VoiceCloneStatus)
	})

	t.Run("live run deletes and reconciles state", func(t *testing.T) {
		env := newTestEnv(t)
		old := seedVoice(t, env, "v-old", models.CloneStatusCompleted, 48*time.Hour)
		fresh := seedVoice(t, env, "v-fresh", models.CloneStatusCompleted, time.Hour)

		report, err := env.service.Cleanup(context.Background(), 24*time.Hour, nil, false)
		require.NoError(t, err)
		assert.Equal(t, []uint{old.ID}, report.Deleted)
		assert.Empty(t, report.Failures)

		assert.Equal(t, models.CloneStatusDeleted, env.reload(t, old.ID).VoiceCloneStatus)
		assert.Equal(t, models.CloneStatusCompleted, env.reload(t, fresh.ID).VoiceCloneStatus)
		assert.Equal(t, []string{"v-old"}, env.provider.deleted)
	})

	t.Run("provider 404 still reconciles to deleted", func(t *testing.T) {
		env := newTestEnv(t)
		gone := seedVoice(t, env, "v-gone", models.CloneStatusCompleted, 48*time.Hour)
		env.provider.deleteErrs = map[string]error{"v-gone": elevenlabs.ErrVoiceNotFound}

		report, err := env.service.Cleanup(context.Background(), 24*time.Hour, nil, false)
		require.NoError(t, err)
		assert.Equal(t, []uint{gone.ID}, report.Deleted)
		assert.Equal(t, models.CloneStatusDeleted, env.reload(t, gone.ID).VoiceCloneStatus)
	})

	t.Run("partial failure is reported per submission", func(t *testing.T) {
		env := newTestEnv(t)
		ok := seedVoice(t, env, "v-ok", models.CloneStatusCompleted, 48*time.Hour)
		bad := seedVoice(t, env, "v-bad", models.CloneStatusCompleted, 48*time.Hour)
		env.provider.deleteErrs = map[string]error{"v-bad": errors.New("provider down")}

		report, err := env.service.Cleanup(context.Background(), 24*time.Hour, nil, false)
		require.NoError(t, err)
		assert.Equal(t, []uint{ok.ID}, report.Deleted)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, bad.ID, report.Failures[0].SubmissionID)

		// failed deletion leaves local state untouched
		assert.Equal(t, models.CloneStatusCompleted, env.reload(t, bad.ID).VoiceCloneStatus)
	})

	t.Run("status filter is honored", func(t *testing.T) {
		env := newTestEnv(t)
		failed := seedVoice(t, env, "v-failed", models.CloneStatusFailed, 48*time.Hour)
		seedVoice(t, env, "v-done", models.CloneStatusCompleted, 48*time.Hour)

		report, err := env.service.Cleanup(context.Background(), 24*time.Hour,
			[]string{models.CloneStatusFailed}, true)
		require.NoError(t, err)
		require.Len(t, report.Candidates, 1)
		assert.Equal(t, failed.ID, report.Candidates[0].SubmissionID)
	})
}

func TestDeleteAllActive(t *testing.T) {
	t.Run("fails closed without confirmation", func(t *testing.T) {
		env := newTestEnv(t)
		seedVoice(t, env, "v-1", models.CloneStatusCompleted, time.Hour)

		_, err := env.service.DeleteAllActive(context.Background(), false)
		assert.ErrorIs(t, err, ErrConfirmationRequired)
		assert.Equal(t, 0, env.provider.deleteCalls)
	})

	t.Run("confirmed deletes every non-deleted voice", func(t *testing.T) {
		env := newTestEnv(t)
		a := seedVoice(t, env, "v-a", models.CloneStatusCompleted, time.Hour)
		b := seedVoice(t, env, "v-b", models.CloneStatusPending, time.Hour)
		gone := seedVoice(t, env, "v-gone", models.CloneStatusDeleted, time.Hour)

		report, err := env.service.DeleteAllActive(context.Background(), true)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{a.ID, b.ID}, report.Deleted)

		assert.Equal(t, models.CloneStatusDeleted, env.reload(t, a.ID).VoiceCloneStatus)
		assert.Equal(t, models.CloneStatusDeleted, env.reload(t, b.ID).VoiceCloneStatus)
		// already-deleted rows are not candidates
		assert.Equal(t, 2, env.provider.deleteCalls)
		_ = gone
	})
}

func TestDeleteForSubmission(t *testing.T) {
	env := newTestEnv(t)
	sub := seedVoice(t, env, "v-single", models.CloneStatusCompleted, time.Hour)

	require.NoError(t, env.service.DeleteForSubmission(context.Background(), sub.ID))
	assert.Equal(t, models.CloneStatusDeleted, env.reload(t, sub.ID).VoiceCloneStatus)

	// deleting again is a no-op
	require.NoError(t, env.service.DeleteForSubmission(context.Background(), sub.ID))
	assert.Equal(t, 1, env.provider.deleteCalls)
}

func TestListActive(t *testing.T) {
	env := newTestEnv(t)
	active := seedVoice(t, env, "v-active", models.CloneStatusCompleted, 3*time.Hour)
	seedVoice(t, env, "v-deleted", models.CloneStatusDeleted, 3*time.Hour)

	require.NoError(t, env.db.Create(&models.GeneratedAudio{
		SubmissionID: active.ID,
		LanguageCode: "hi",
		Status:       models.GeneratedStatusCompleted,
	}).Error)
	require.NoError(t, env.db.Create(&models.GeneratedAudio{
		SubmissionID: active.ID,
		LanguageCode: "ta",
		Status:       models.GeneratedStatusFailed,
	}).Error)

	voices, err := env.service.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 1)
	assert.Equal(t, active.ID, voices[0].SubmissionID)
	assert.Equal(t, "v-active", voices[0].VoiceID)
	assert.InDelta(t, 3, voices[0].AgeHours, 1)
	assert.Equal(t, []string{"hi"}, voices[0].GeneratedLanguages)
}
