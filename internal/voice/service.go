package voice

import (
	"context"
	"sync"

	"medvoice/internal/models"
	"medvoice/internal/repository"
	"medvoice/pkg/elevenlabs"
	"medvoice/pkg/storage"
)

// Provider is the capability set the pipeline needs from the voice-cloning
// API. *elevenlabs.Client satisfies it; tests substitute fakes.
type Provider interface {
	CloneVoice(ctx context.Context, name string, samplePaths []string, description string) (string, error)
	DeleteVoice(ctx context.Context, voiceID string) error
	ConvertSpeechToSpeechStream(ctx context.Context, voiceID, sourcePath, languageCode, destPath string) error
	ListVoices(ctx context.Context) ([]elevenlabs.Voice, error)
	HealthCheck(ctx context.Context) (elevenlabs.Health, error)
}

var _ Provider = (*elevenlabs.Client)(nil)

// Options configures a Service.
type Options struct {
	OutputDir       string
	UploadGenerated bool // best-effort durable upload of generated artifacts
}

// Service drives the voice pipeline: clone orchestration, per-language
// generation fan-out, and provider-side voice slot reclamation. All
// collaborators are injected; the Service owns no global state.
type Service struct {
	repo     *repository.Repository
	provider Provider
	store    storage.Store
	resolver *Resolver
	opts     Options

	locks submissionLocks
}

func NewService(repo *repository.Repository, provider Provider, store storage.Store, resolver *Resolver, opts Options) *Service {
	if opts.OutputDir == "" {
		opts.OutputDir = "generated_audio"
	}
	return &Service{
		repo:     repo,
		provider: provider,
		store:    store,
		resolver: resolver,
		opts:     opts,
	}
}

// ProviderHealth probes the voice provider with the configured credentials.
func (s *Service) ProviderHealth(ctx context.Context) (elevenlabs.Health, error) {
	return s.provider.HealthCheck(ctx)
}

// LatestGenerated returns the winning generated artifact per language for a
// submission.
func (s *Service) LatestGenerated(ctx context.Context, submissionID uint) (map[string]models.GeneratedAudio, error) {
	return s.repo.LatestPerLanguage(ctx, submissionID)
}

// submissionLocks serializes voice-state mutations per submission id. Two
// concurrent runs for different submissions proceed in parallel; two for the
// same submission do not. An entry is dropped when its last holder unlocks,
// so the map only tracks in-flight submissions.
type submissionLocks struct {
	mu sync.Mutex
	m  map[uint]*submissionLock
}

type submissionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *submissionLocks) lock(id uint) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[uint]*submissionLock)
	}
	e, ok := l.m[id]
	if !ok {
		e = &submissionLock{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}
