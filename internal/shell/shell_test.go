package shell

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/uni10/storefront-seo/internal/metrics"
)

func TestGetReadsOnceAndCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte("<html>v1</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(path)
	got, err := c.Get()
	if err != nil || got != "<html>v1</html>" {
		t.Fatalf("Get = (%q, %v)", got, err)
	}

	// Edits after the first load are not picked up.
	if err := os.WriteFile(path, []byte("<html>v2</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, _ = c.Get()
	if got != "<html>v1</html>" {
		t.Fatalf("cache reloaded from disk: %q", got)
	}
}

func TestGetMissingFile(t *testing.T) {
	before := testutil.ToFloat64(metrics.TemplateLoadErrorsTotal)

	c := New(filepath.Join(t.TempDir(), "missing.html"))
	_, err := c.Get()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if after := testutil.ToFloat64(metrics.TemplateLoadErrorsTotal); after != before+1 {
		t.Fatalf("template error counter = %v, want %v", after, before+1)
	}
}

func TestGetRetriesAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.html")
	c := New(path)

	if _, err := c.Get(); err == nil {
		t.Fatalf("expected error before file exists")
	}
	if err := os.WriteFile(path, []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := c.Get(); err != nil || got != "ok" {
		t.Fatalf("Get = (%q, %v), want (ok, nil)", got, err)
	}
}

func TestGetConcurrentFirstLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte("shell"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(path)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := c.Get(); err != nil || got != "shell" {
				t.Errorf("Get = (%q, %v)", got, err)
			}
		}()
	}
	wg.Wait()
}
