package handlers

import (
	"errors"
	"net/http"
	"time"

	"medvoice/internal/voice"
	"medvoice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

func submissionID(c *gin.Context) (uint, bool) {
	id := cast.ToUint(c.Param("id"))
	if id == 0 {
		response.Fail(c, "invalid submission id", nil)
		return 0, false
	}
	return id, true
}

// Trigger a voice clone for one submission.
func (h *Handlers) handleCloneVoice(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}

	voiceID, err := h.service.CloneForSubmission(c.Request.Context(), id)
	if err != nil {
		var already *voice.AlreadyClonedError
		if errors.As(err, &already) {
			// idempotent short-circuit, not a failure
			response.Success(c, "voice already cloned", gin.H{"voice_id": already.VoiceID})
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	response.Success(c, "voice cloned", gin.H{"voice_id": voiceID})
}

// Run the per-language generation fan-out. The response always carries the
// full per-language breakdown.
func (h *Handlers) handleGenerateLanguages(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}

	result, err := h.service.GenerateAllLanguages(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, voice.ErrVoiceNotCloned) || errors.Is(err, voice.ErrNoLanguagesSelected) {
			response.Fail(c, err.Error(), nil)
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	response.Success(c, "generation finished", result)
}

// Latest generated artifact per language for one submission.
func (h *Handlers) handleListGenerated(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}

	latest, err := h.service.LatestGenerated(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, "can not find generated audio records", nil)
		return
	}
	response.Success(c, "get generated audio", latest)
}

// Reclaim one submission's provider voice.
func (h *Handlers) handleDeleteVoice(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteForSubmission(c.Request.Context(), id); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	response.Success(c, "voice deleted", nil)
}

// Age-based slot reclamation with dry-run preview.
func (h *Handlers) handleCleanup(c *gin.Context) {
	var req struct {
		MaxAgeHours int      `json:"max_age_hours"`
		Statuses    []string `json:"statuses"`
		DryRun      bool     `json:"dry_run"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", nil)
		return
	}
	if req.MaxAgeHours <= 0 {
		req.MaxAgeHours = 24
	}

	report, err := h.service.Cleanup(c.Request.Context(),
		time.Duration(req.MaxAgeHours)*time.Hour, req.Statuses, req.DryRun)
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	response.Success(c, "cleanup finished", report)
}

// Emergency bulk reclamation; requires an explicit confirmation flag.
func (h *Handlers) handleDeleteAllActive(c *gin.Context) {
	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", nil)
		return
	}

	report, err := h.service.DeleteAllActive(c.Request.Context(), req.Confirmed)
	if err != nil {
		if errors.Is(err, voice.ErrConfirmationRequired) {
			response.Fail(c, err.Error(), nil)
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	response.Success(c, "all active voices deleted", report)
}

// Operator inventory of live provider voices.
func (h *Handlers) handleListActive(c *gin.Context) {
	voices, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	response.Success(c, "get active voices", voices)
}

func (h *Handlers) handleProviderHealth(c *gin.Context) {
	health, err := h.service.ProviderHealth(c.Request.Context())
	if err != nil {
		response.FailWithStatus(c, http.StatusServiceUnavailable, err.Error(), nil)
		return
	}
	response.Success(c, "provider health", health)
}
