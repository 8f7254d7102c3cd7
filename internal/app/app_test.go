package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/buzzer-server/internal/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.Mode = "test"
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	logger := zerolog.Nop()
	application := New(&cfg, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}

func TestRoutesMounted(t *testing.T) {
	cfg := testConfig()
	logger := zerolog.Nop()
	application := New(&cfg, &logger)

	ts := httptest.NewServer(application.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, body)
	}

	// engine.io rejects a request without a transport, which proves the
	// socket.io handler is mounted rather than gin's 404.
	resp, err = http.Get(ts.URL + "/socket.io/")
	if err != nil {
		t.Fatalf("socket.io: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		t.Fatalf("socket.io endpoint not mounted")
	}
}
