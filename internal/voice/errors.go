package voice

import (
	"errors"
	"fmt"
)

// Sentinel errors for operation preconditions.
var (
	// ErrNoAudioSamples: the submission carries no resolvable audio samples.
	ErrNoAudioSamples = errors.New("no audio samples available for cloning")

	// ErrNoLanguagesSelected: the submission has an empty language selection.
	ErrNoLanguagesSelected = errors.New("no languages selected")

	// ErrVoiceNotCloned: generation requires a completed clone first.
	ErrVoiceNotCloned = errors.New("submission has no cloned voice")

	// ErrConfirmationRequired: emergency bulk deletion was not confirmed.
	ErrConfirmationRequired = errors.New("confirmation required for bulk voice deletion")
)

// SourceNotFoundError: a reference resolved to nothing on disk, in object
// storage, or over HTTP.
type SourceNotFoundError struct {
	Ref string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("audio source not found: %s", e.Ref)
}

// DownloadError: an HTTP fetch of a remote reference failed.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download failed for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("download failed for %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// AlreadyClonedError is an idempotent short-circuit, not a failure: the
// submission already holds a completed voice.
type AlreadyClonedError struct {
	VoiceID string
}

func (e *AlreadyClonedError) Error() string {
	return fmt.Sprintf("submission already has cloned voice %s", e.VoiceID)
}

// NoMasterFoundError: a language has no active master recording. Recorded per
// language inside the fan-out, never aborts sibling languages.
type NoMasterFoundError struct {
	Language string
}

func (e *NoMasterFoundError) Error() string {
	return "no audio master found"
}
