// Package server is the HTTP control surface: read-only introspection of the
// window manager state and config, plus command injection. Everything crosses
// the bus; the server never touches live shell state.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/k0kubun/pp"

	"github.com/lx7/monotile/internal/build"
	"github.com/lx7/monotile/internal/bus"
	"github.com/lx7/monotile/internal/config"
	"github.com/lx7/monotile/pkg/chiext"
)

type Options struct {
	Address string
	Debug   bool
	Config  config.Config
}

type Server struct {
	addr   string
	cfg    config.Config
	router chi.Router
	hub    *bus.Hub[bus.StateChanged]

	mu   sync.Mutex
	last bus.State
	ok   bool
}

func New(opts Options) *Server {
	s := &Server{
		addr: opts.Address,
		cfg:  opts.Config,
		hub:  bus.NewHub[bus.StateChanged]().Register(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger())
	r.Use(middleware.Recoverer)

	api := humachi.New(r, huma.DefaultConfig(build.Current.Name, build.Current.Version))
	huma.Get(api, "/api/summary", s.summary)
	huma.Get(api, "/api/state", s.state)
	huma.Get(api, "/api/config", s.config)
	huma.Post(api, "/api/command", s.command)

	if opts.Debug {
		r.Get("/debug/state", s.debugState)
	}

	s.router = r
	return s
}

func (s *Server) String() string { return "http" }

// Serve runs the listener and keeps the snapshot cache fed until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	stateC, unsub := s.hub.Subscribe(ctx)
	defer unsub()
	go s.consume(ctx, stateC)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errC := make(chan error, 1)
	go func() { errC <- srv.ListenAndServe() }()

	slog.Info("http server listening", "address", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shut down http server", "error", err)
		}
		<-errC
		return ctx.Err()
	case err := <-errC:
		return err
	}
}

func (s *Server) consume(ctx context.Context, events <-chan bus.StateChanged) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			s.setState(ev.State)
		}
	}
}

func (s *Server) setState(st bus.State) {
	s.mu.Lock()
	s.last, s.ok = st, true
	s.mu.Unlock()
}

func (s *Server) lastState() (bus.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.ok
}

type summaryOutput struct {
	Body build.Build
}

func (s *Server) summary(ctx context.Context, _ *struct{}) (*summaryOutput, error) {
	return &summaryOutput{Body: build.Current}, nil
}

type stateOutput struct {
	Body bus.State
}

func (s *Server) state(ctx context.Context, _ *struct{}) (*stateOutput, error) {
	st, ok := s.lastState()
	if !ok {
		return nil, huma.Error404NotFound("no state snapshot yet")
	}
	return &stateOutput{Body: st}, nil
}

type configOutput struct {
	Body config.Config
}

func (s *Server) config(ctx context.Context, _ *struct{}) (*configOutput, error) {
	return &configOutput{Body: s.cfg}, nil
}

type commandInput struct {
	Body struct {
		Name string `json:"name" doc:"command to run"`
		Arg  int    `json:"arg,omitempty" doc:"1-based tag index or signed step count"`
	}
}

func (s *Server) command(ctx context.Context, in *commandInput) (*struct{}, error) {
	if !slices.Contains(bus.CommandNames, in.Body.Name) {
		return nil, huma.Error422UnprocessableEntity(fmt.Sprintf("unknown command %q", in.Body.Name))
	}
	bus.Publish(bus.Command{Name: in.Body.Name, Arg: in.Body.Arg})
	return nil, nil
}

func (s *Server) debugState(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lastState()
	if !ok {
		http.Error(w, "no state snapshot yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, pp.Sprintln(st))
}
