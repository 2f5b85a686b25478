package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lx7/monotile/internal/build"
	"github.com/lx7/monotile/internal/bus"
	"github.com/lx7/monotile/internal/config"
)

func newTestServer(t *testing.T, debug bool) *Server {
	t.Helper()
	return New(Options{
		Address: "127.0.0.1:0",
		Debug:   debug,
		Config:  config.Config{BorderWidth: 2, TagCount: 9, Terminal: "xterm"},
	})
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestSummary(t *testing.T) {
	s := newTestServer(t, false)

	rec := doRequest(t, s, http.MethodGet, "/api/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got build.Build
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "monotile" {
		t.Errorf("unexpected name %q", got.Name)
	}
	if got.Version == "" {
		t.Error("expected a version")
	}
}

func TestState(t *testing.T) {
	s := newTestServer(t, false)

	if rec := doRequest(t, s, http.MethodGet, "/api/state", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before the first snapshot, got %d", rec.Code)
	}

	s.setState(bus.State{Width: 1000, Height: 800, ActiveTag: 1})

	rec := doRequest(t, s, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got bus.State
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Width != 1000 || got.ActiveTag != 1 {
		t.Errorf("unexpected state %+v", got)
	}
}

func TestStateCacheConsumesEvents(t *testing.T) {
	s := newTestServer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan bus.StateChanged)
	go s.consume(ctx, events)

	events <- bus.StateChanged{State: bus.State{Width: 640}}

	deadline := time.After(time.Second)
	for {
		if st, ok := s.lastState(); ok {
			if st.Width != 640 {
				t.Fatalf("unexpected cached state %+v", st)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the cache")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestConfig(t *testing.T) {
	s := newTestServer(t, false)

	rec := doRequest(t, s, http.MethodGet, "/api/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got config.Config
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.BorderWidth != 2 || got.Terminal != "xterm" {
		t.Errorf("unexpected config %+v", got)
	}
}

func TestCommand(t *testing.T) {
	var got []bus.Command
	bus.Subscribe("test", func(ctx context.Context, c bus.Command) error {
		got = append(got, c)
		return nil
	})
	s := newTestServer(t, false)

	rec := doRequest(t, s, http.MethodPost, "/api/command", `{"name":"view","arg":3}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(got) != 1 || got[0] != (bus.Command{Name: "view", Arg: 3}) {
		t.Fatalf("unexpected published commands %v", got)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/command", `{"name":"bogus"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an unknown command, got %d", rec.Code)
	}
	if len(got) != 1 {
		t.Fatalf("unknown command must not publish, got %v", got)
	}
}

func TestDebugState(t *testing.T) {
	s := newTestServer(t, true)

	if rec := doRequest(t, s, http.MethodGet, "/debug/state", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before the first snapshot, got %d", rec.Code)
	}

	s.setState(bus.State{Width: 1000, Height: 800})
	rec := doRequest(t, s, http.MethodGet, "/debug/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected a dump body")
	}
}

func TestDebugStateDisabled(t *testing.T) {
	s := newTestServer(t, false)
	if rec := doRequest(t, s, http.MethodGet, "/debug/state", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when debug is off, got %d", rec.Code)
	}
}
