package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"video-thumbnail/internal/bridge"
	"video-thumbnail/internal/handlers"
	"video-thumbnail/internal/startup"
	"video-thumbnail/internal/workers"

	"github.com/gorilla/mux"
)

func newTestRouter() *mux.Router {
	d := bridge.NewDispatcher(nil, workers.NewPool(1), 0)
	h := handlers.New(d, &startup.Config{FFmpegAvailable: true})
	return setupRouter(h)
}

func TestSetupRouterRoutes(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		method string
		path   string
		match  bool
	}{
		{http.MethodPost, "/api/thumbnail/data", true},
		{http.MethodPost, "/api/thumbnail/file", true},
		{http.MethodPost, "/api/thumbnail/stream", true},
		{http.MethodGet, "/api/thumbnail/data", false},
		{http.MethodGet, "/health", true},
		{http.MethodGet, "/healthz", true},
		{http.MethodGet, "/livez", true},
		{http.MethodHead, "/livez", true},
		{http.MethodGet, "/readyz", true},
		{http.MethodGet, "/version", true},
		{http.MethodGet, "/metrics", false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var match mux.RouteMatch
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if got := r.Match(req, &match); got != tt.match {
				t.Errorf("Match(%s %s) = %v, want %v", tt.method, tt.path, got, tt.match)
			}
		})
	}
}

func TestRouterUnknownModeNotImplemented(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/thumbnail/stream", strings.NewReader(`{"video":"/videos/clip.mp4"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotImplemented)
	}
}

func TestRouterReadyz(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
