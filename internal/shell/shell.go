// internal/shell/shell.go
//
// Process-wide cache for the unrendered HTML shell.
//
// Context
// -------
// Every page route serves the same built index.html with per-route tags
// swapped in.  The file is read from disk on first use and held for the
// life of the process.  Edits to the file need a restart.
//
// Notes
// -----
// • The value lives in an atomic.Pointer.  Two requests racing the first
//   load may both read the file; both store the same bytes.
// • A failed read is not cached, so the next request retries.
// • Failures are logged, counted, and returned wrapped in ErrUnavailable.
package shell

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/uni10/storefront-seo/internal/metrics"
)

// ErrUnavailable marks a shell that could not be read.
var ErrUnavailable = errors.New("html shell unavailable")

// Cache holds one HTML file.
type Cache struct {
	path string
	doc  atomic.Pointer[string]
}

// New returns a Cache for path.  Nothing is read until Get.
func New(path string) *Cache {
	return &Cache{path: path}
}

// Path reports the file backing the cache.
func (c *Cache) Path() string { return c.path }

// Get returns the cached shell, reading it on first call.
func (c *Cache) Get() (string, error) {
	if p := c.doc.Load(); p != nil {
		return *p, nil
	}

	b, err := os.ReadFile(c.path)
	if err != nil {
		metrics.TemplateLoadErrorsTotal.Inc()
		zap.L().Error("html shell read failed",
			zap.String("path", c.path), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s := string(b)
	c.doc.Store(&s)
	zap.L().Info("html shell loaded",
		zap.String("path", c.path), zap.Int("bytes", len(b)))
	return s, nil
}
