package imageload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheSize is the number of decoded images kept.
	DefaultCacheSize = 128
	// DefaultFetchTimeout bounds a shared fetch, which outlives the
	// callers that started it.
	DefaultFetchTimeout = 30 * time.Second
	// maxImageBytes caps a single image.
	maxImageBytes = 16 << 20
)

// ErrNoImage is returned when a load is requested for an empty reference.
var ErrNoImage = errors.New("no image reference")

// ErrTooLarge is returned for images over the size cap.
var ErrTooLarge = errors.New("image too large")

// Loader resolves image references against a base location, which is
// either a local directory or an http(s) URL.
type Loader struct {
	base   string
	client *http.Client
	logger *slog.Logger
	cache  *lru.Cache
	group  singleflight.Group

	fetchTimeout time.Duration
	maxBytes     int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for remote images.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *Loader) { l.client = hc }
}

// WithFetchTimeout bounds each fetch. Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.fetchTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader creates a Loader with an LRU cache of size entries.
func NewLoader(base string, size int, opts ...Option) (*Loader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("image cache: %w", err)
	}
	l := &Loader{
		base:   strings.TrimSpace(base),
		client: http.DefaultClient,
		logger: slog.Default(),
		cache:  cache,

		fetchTimeout: DefaultFetchTimeout,
		maxBytes:     maxImageBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Cached returns a previously loaded image for key.
func (l *Loader) Cached(key string) (Image, bool) {
	v, ok := l.cache.Get(key)
	if !ok {
		return Image{}, false
	}
	return v.(Image), true
}

// Load starts loading ref under key and returns its future. Cached keys
// resolve immediately; concurrent loads of one key share a fetch. The
// shared fetch runs on a context owned by the loader, so a caller whose ctx
// ends only fails its own future.
func (l *Loader) Load(ctx context.Context, key, ref string) *Future {
	f := newFuture()
	if img, ok := l.Cached(key); ok {
		f.resolve(img, nil)
		return f
	}
	if strings.TrimSpace(ref) == "" {
		f.resolve(Image{}, ErrNoImage)
		return f
	}

	ch := l.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.fetchTimeout)
		defer cancel()
		img, err := l.fetch(fetchCtx, ref)
		if err != nil {
			return nil, err
		}
		img.Key = key
		l.cache.Add(key, img)
		return img, nil
	})
	go func() {
		select {
		case r := <-ch:
			if r.Err != nil {
				l.logger.Debug("image load failed", "key", key, "ref", ref, "error", r.Err)
				f.resolve(Image{}, r.Err)
				return
			}
			if r.Shared {
				l.logger.Debug("image load shared", "key", key)
			}
			f.resolve(r.Val.(Image), nil)
		case <-ctx.Done():
			f.resolve(Image{}, context.Cause(ctx))
		}
	}()
	return f
}

// Resolve returns the location ref refers to: a URL or a file path.
func (l *Loader) Resolve(ref string) string {
	if isURL(ref) || filepath.IsAbs(ref) {
		return ref
	}
	if isURL(l.base) {
		u, err := url.Parse(l.base)
		if err == nil {
			u.Path = path.Join(u.Path, ref)
			return u.String()
		}
	}
	return filepath.Join(l.base, ref)
}

func (l *Loader) fetch(ctx context.Context, ref string) (Image, error) {
	src := l.Resolve(ref)
	var (
		data []byte
		err  error
	)
	if isURL(src) {
		data, err = l.download(ctx, src)
	} else {
		data, err = l.readFile(src)
	}
	if err != nil {
		return Image{}, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decode %s: %w", ref, err)
	}
	return Image{
		Name:   path.Base(filepath.ToSlash(ref)),
		Source: src,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Bytes:  len(data),
	}, nil
}

func (l *Loader) download(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", src, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("fetch %s: %w", src, ErrTooLarge)
	}
	return data, nil
}

func (l *Loader) readFile(src string) ([]byte, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if fi.Size() > l.maxBytes {
		return nil, fmt.Errorf("read %s: %w", src, ErrTooLarge)
	}
	return os.ReadFile(src)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
