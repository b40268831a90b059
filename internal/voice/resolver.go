package voice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"medvoice/pkg/logger"
	"medvoice/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TempFiles tracks temporary files created while resolving remote references,
// so the owning operation can batch-delete them on every exit path.
type TempFiles struct {
	paths []string
}

func (t *TempFiles) Add(path string) {
	t.paths = append(t.paths, path)
}

func (t *TempFiles) Paths() []string { return t.paths }

// Cleanup removes every tracked file. Deletion failures are logged as
// warnings, never raised; cleanup must not mask the primary outcome.
func (t *TempFiles) Cleanup() {
	for _, p := range t.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warn("temp file cleanup failed", zap.String("path", p), zap.Error(err))
		}
	}
	t.paths = nil
}

// Resolver normalizes a heterogeneous audio/image reference (local path,
// object-store key, HTTP URL) into a guaranteed-local file.
type Resolver struct {
	store       storage.Store
	httpClient  *http.Client
	projectRoot string
	tempDir     string
}

func NewResolver(store storage.Store, projectRoot, tempDir string) *Resolver {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "medvoice")
	}
	return &Resolver{
		store:       store,
		httpClient:  &http.Client{},
		projectRoot: projectRoot,
		tempDir:     tempDir,
	}
}

// objectKey reports whether ref addresses the durable object store, and the
// store key if so. Both minio://key and gs://bucket/key shapes are produced
// by upstream collaborators.
func objectKey(ref string) (string, bool) {
	if key, ok := strings.CutPrefix(ref, "minio://"); ok {
		return key, true
	}
	if rest, ok := strings.CutPrefix(ref, "gs://"); ok {
		if _, key, ok := strings.Cut(rest, "/"); ok {
			return key, true
		}
		return rest, true
	}
	return "", false
}

// Resolve returns a local filesystem path for ref. Temporary downloads are
// appended to temps; local paths are returned unchanged and must not be
// deleted by the caller.
func (r *Resolver) Resolve(ctx context.Context, ref string, temps *TempFiles) (string, error) {
	if ref == "" {
		return "", &SourceNotFoundError{Ref: ref}
	}

	if key, ok := objectKey(ref); ok {
		return r.downloadObject(ctx, ref, key, temps)
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return r.downloadHTTP(ctx, ref, temps)
	}

	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.projectRoot, path)
	}
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return path, nil
	}
	return "", &SourceNotFoundError{Ref: ref}
}

func (r *Resolver) tempPath(ref string) (string, error) {
	if err := os.MkdirAll(r.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	ext := filepath.Ext(ref)
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	return filepath.Join(r.tempDir, uuid.New().String()+ext), nil
}

// writeTemp streams body into a fresh temp file, guaranteeing close-and-flush
// before the caller observes the path, and removing the file on error.
func (r *Resolver) writeTemp(ref string, body io.Reader, temps *TempFiles) (string, error) {
	path, err := r.tempPath(ref)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	_, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path)
		if copyErr != nil {
			return "", fmt.Errorf("failed to write temp file: %w", copyErr)
		}
		return "", fmt.Errorf("failed to flush temp file: %w", closeErr)
	}
	temps.Add(path)
	return path, nil
}

func (r *Resolver) downloadObject(ctx context.Context, ref, key string, temps *TempFiles) (string, error) {
	if r.store == nil {
		return "", &SourceNotFoundError{Ref: ref}
	}
	body, _, err := r.store.Read(ctx, key)
	if err != nil {
		return "", &DownloadError{URL: ref, Err: err}
	}
	defer body.Close()
	return r.writeTemp(key, body, temps)
}

func (r *Resolver) downloadHTTP(ctx context.Context, url string, temps *TempFiles) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}
	return r.writeTemp(url, resp.Body, temps)
}
