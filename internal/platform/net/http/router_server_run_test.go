package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"allsky/internal/platform/config"
	phttp "allsky/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	t.Setenv("RUN_ADDR", "127.0.0.1:0")
	t.Setenv("RUN_SHUTDOWN_GRACE", "1s")

	optCalled := false
	srv := phttp.NewServer(config.New().Prefix("RUN_"), func(*chi.Mux) { optCalled = true })
	if !optCalled {
		t.Fatal("expected NewServer option to be called")
	}

	r := srv.Router()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-MW", "yes")
			next.ServeHTTP(w, req)
		})
	})
	r.Group(func(gr phttp.Router) {
		gr.Get("/group/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "pong") })
	})
	r.Post("/m", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
	r.Head("/m", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	recG := httptest.NewRecorder()
	r.Mux().ServeHTTP(recG, httptest.NewRequest("GET", "/group/ping", nil))
	if recG.Code != http.StatusOK || recG.Body.String() != "pong" || recG.Header().Get("X-MW") != "yes" {
		t.Fatalf("unexpected /group/ping: %d %q", recG.Code, recG.Body.String())
	}
	recP := httptest.NewRecorder()
	r.Mux().ServeHTTP(recP, httptest.NewRequest("POST", "/m", nil))
	if recP.Code != http.StatusCreated {
		t.Fatalf("post adapter: %d", recP.Code)
	}
	recH := httptest.NewRecorder()
	r.Mux().ServeHTTP(recH, httptest.NewRequest("HEAD", "/m", nil))
	if recH.Code != http.StatusOK {
		t.Fatalf("head adapter: %d", recH.Code)
	}

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServer_ShutdownReturnsNil(t *testing.T) {
	t.Setenv("SHUT_ADDR", "127.0.0.1:0")
	srv := phttp.NewServer(config.New().Prefix("SHUT_"))

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	sctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestServer_Run_ReturnsListenError(t *testing.T) {
	t.Setenv("BAD_ADDR", "127.0.0.1:abc")
	srv := phttp.NewServer(config.New().Prefix("BAD_"))
	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}
