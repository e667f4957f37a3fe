package tmpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/dwatson/storefront/pkg/errors"
)

// Source loads raw template text by name.
type Source interface {
	Load(ctx context.Context, name string) (string, error)
}

// DirSource loads templates from a directory on disk. Template names map to
// <name>.html files; path traversal in names is rejected.
type DirSource struct {
	dir string
}

// NewDirSource creates a directory-backed template source.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Load reads the named template file.
func (s *DirSource) Load(_ context.Context, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid template name %q", name))
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name+".html"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NotFound("template", name)
		}
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(data), nil
}

// FSSource loads templates from an fs.FS, typically the embedded defaults
// compiled into the binary. Names map to <name>.html like DirSource.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a filesystem-backed template source.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Load reads the named template from the filesystem.
func (s *FSSource) Load(_ context.Context, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid template name %q", name))
	}

	data, err := fs.ReadFile(s.fsys, name+".html")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperrors.NotFound("template", name)
		}
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(data), nil
}

// FallbackSource tries the primary source first and falls back to the
// secondary when the primary does not have the template. Errors other than
// not-found are returned as-is so an unreachable asset host surfaces instead
// of silently serving stale defaults.
type FallbackSource struct {
	primary  Source
	fallback Source
}

// NewFallbackSource creates a source that falls back on not-found.
func NewFallbackSource(primary, fallback Source) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: fallback}
}

// Load loads the named template, consulting the fallback when the primary
// reports not-found.
func (s *FallbackSource) Load(ctx context.Context, name string) (string, error) {
	src, err := s.primary.Load(ctx, name)
	if err == nil {
		return src, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return s.fallback.Load(ctx, name)
	}
	return "", err
}

// Getter is the subset of the HTTP client used to fetch remote templates.
// Both the plain retrying client and the circuit-breaker wrapper satisfy it.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// HTTPSource fetches templates from a remote asset host.
type HTTPSource struct {
	client  Getter
	baseURL string
}

// NewHTTPSource creates a template source backed by a remote asset host.
// Templates are fetched from <baseURL>/<name>.html.
func NewHTTPSource(client Getter, baseURL string) *HTTPSource {
	return &HTTPSource{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Load fetches the named template over HTTP.
func (s *HTTPSource) Load(ctx context.Context, name string) (string, error) {
	resp, err := s.client.Get(ctx, s.baseURL+"/"+name+".html")
	if err != nil {
		return "", fmt.Errorf("fetch template %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", apperrors.NotFound("template", name)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch template %s: unexpected status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(data), nil
}

// Loader loads and caches parsed templates by name for the process lifetime.
type Loader struct {
	source Source

	mu    sync.RWMutex
	cache map[string]*Template
}

// NewLoader creates a template loader over the given source.
func NewLoader(source Source) *Loader {
	return &Loader{
		source: source,
		cache:  make(map[string]*Template),
	}
}

// Get returns the parsed template for name, loading and caching it on first
// use.
func (l *Loader) Get(ctx context.Context, name string) (*Template, error) {
	l.mu.RLock()
	t, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return t, nil
	}

	src, err := l.source.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	t = Parse(name, src)

	l.mu.Lock()
	l.cache[name] = t
	l.mu.Unlock()

	return t, nil
}

// Raw returns the raw template text for name without caching the parse.
func (l *Loader) Raw(ctx context.Context, name string) (string, error) {
	return l.source.Load(ctx, name)
}
