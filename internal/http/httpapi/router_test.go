package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"pichasafi/internal/http/handlers"
	"pichasafi/internal/wa"
)

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(ctx context.Context, in wa.Inbound) error { return nil }

func newRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	app := handlers.NewApp(noopDispatcher{}, "token", zerolog.Nop())
	return NewRouter(app, zerolog.Nop(), opts)
}

func TestHealthRoute(t *testing.T) {
	r := newRouter(t, Options{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestWebhookRoutesWired(t *testing.T) {
	r := newRouter(t, Options{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=token&hub.challenge=99", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "99" {
		t.Fatalf("verify: status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{}")))
	if rec.Code != http.StatusOK {
		t.Fatalf("receive: status = %d", rec.Code)
	}
}

func TestStaticFilesServedWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "probe.txt"), []byte("served"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := newRouter(t, Options{StaticDir: dir})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/probe.txt", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "served" {
		t.Fatalf("static: status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	newRouter(t, Options{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/probe.txt", nil))
	if rec.Code == http.StatusOK {
		t.Fatal("static route must be absent when no directory is configured")
	}
}
