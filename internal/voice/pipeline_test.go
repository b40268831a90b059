package voice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"medvoice/internal/models"
	"medvoice/internal/repository"
	"medvoice/pkg/cache"
	"medvoice/pkg/elevenlabs"
	"medvoice/pkg/storage"
	"medvoice/pkg/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeProvider records calls and lets tests script failures per voice or
// language.
type fakeProvider struct {
	mu sync.Mutex

	cloneCalls   int
	deleteCalls  int
	convertCalls int

	cloneVoiceID string
	cloneErr     error
	deleteErrs   map[string]error // by voice id
	convertErrs  map[string]error // by language code
	convertHook  func(lang string)

	payload []byte
	deleted []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		cloneVoiceID: "voice-abc",
		payload:      []byte("cloned-audio"),
	}
}

func (f *fakeProvider) CloneVoice(ctx context.Context, name string, samplePaths []string, description string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cloneCalls++
	if f.cloneErr != nil {
		return "", f.cloneErr
	}
	return f.cloneVoiceID, nil
}

func (f *fakeProvider) DeleteVoice(ctx context.Context, voiceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if err, ok := f.deleteErrs[voiceID]; ok {
		return err
	}
	f.deleted = append(f.deleted, voiceID)
	return nil
}

func (f *fakeProvider) ConvertSpeechToSpeechStream(ctx context.Context, voiceID, sourcePath, languageCode, destPath string) error {
	f.mu.Lock()
	f.convertCalls++
	hook := f.convertHook
	err := f.convertErrs[languageCode]
	payload := f.payload
	f.mu.Unlock()

	if hook != nil {
		hook(languageCode)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(destPath, payload, 0o644)
}

func (f *fakeProvider) ListVoices(ctx context.Context) ([]elevenlabs.Voice, error) {
	return nil, nil
}

func (f *fakeProvider) HealthCheck(ctx context.Context) (elevenlabs.Health, error) {
	return elevenlabs.Health{Healthy: true, Detail: "ok"}, nil
}

type testEnv struct {
	db       *gorm.DB
	repo     *repository.Repository
	provider *fakeProvider
	service  *Service
	root     string
	tempDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := util.InitDatabase("", dsn)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	repo := repository.New(db, cache.NewGoCache(cache.LocalConfig{}))
	provider := newFakeProvider()
	root := t.TempDir()
	tempDir := t.TempDir()
	resolver := NewResolver(nil, root, tempDir)
	service := NewService(repo, provider, nil, resolver, Options{
		OutputDir: filepath.Join(root, "generated"),
	})

	return &testEnv{db: db, repo: repo, provider: provider, service: service, root: root, tempDir: tempDir}
}

// withStore rebuilds the env's service around a durable object store.
func (e *testEnv) withStore(t *testing.T, store storage.Store, upload bool) {
	t.Helper()
	e.service = NewService(e.repo, e.provider, store, NewResolver(store, e.root, e.tempDir), Options{
		OutputDir:       filepath.Join(e.root, "generated"),
		UploadGenerated: upload,
	})
}

// writeFile drops a file under the env's project root and returns its name.
func (e *testEnv) writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(e.root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return name
}

func (e *testEnv) createSubmission(t *testing.T, sub *models.Submission) *models.Submission {
	t.Helper()
	require.NoError(t, e.db.Create(sub).Error)
	return sub
}

func (e *testEnv) createMaster(t *testing.T, lang, filePath string) *models.AudioMaster {
	t.Helper()
	m := &models.AudioMaster{LanguageCode: lang, FilePath: filePath, IsActive: true}
	require.NoError(t, e.db.Create(m).Error)
	return m
}

func (e *testEnv) reload(t *testing.T, id uint) *models.Submission {
	t.Helper()
	var sub models.Submission
	require.NoError(t, e.db.First(&sub, id).Error)
	return &sub
}

func (e *testEnv) generatedRows(t *testing.T, id uint) []models.GeneratedAudio {
	t.Helper()
	var rows []models.GeneratedAudio
	require.NoError(t, e.db.Where("submission_id = ?", id).Order("id ASC").Find(&rows).Error)
	return rows
}

// assertTempDirEmpty verifies no temporary download survived the operation.
func assertTempDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
