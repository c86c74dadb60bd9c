// Package server exposes a forge manager over HTTP.
//
// The server is the event-wiring surface for external window-system
// adapters and for inspection tools: events are POSTed as JSON, the tree
// and its placements are read back as snapshots.
//
//	GET    /healthz           liveness
//	GET    /version           build information
//	GET    /tree              snapshot of the tree (JSON)
//	GET    /tree.dot          snapshot as Graphviz DOT
//	GET    /tree.svg          snapshot rendered to SVG
//	GET    /placements        rectangles of the last render
//	POST   /events            apply one event, or a JSON array of events
//	POST   /render            re-render and return placements
//	DELETE /windows/{id}      unmap a window
//
// Errors are returned as {"error": CODE, "message": "..."} with a status
// derived from the code.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/forgewm/forge/pkg/buildinfo"
	"github.com/forgewm/forge/pkg/errors"
	"github.com/forgewm/forge/pkg/forge"
	"github.com/forgewm/forge/pkg/observability"
	"github.com/forgewm/forge/pkg/render/nodelink"
	"github.com/forgewm/forge/pkg/scenario"
	"github.com/forgewm/forge/pkg/snapshot"
	"github.com/forgewm/forge/pkg/tree"
	"github.com/forgewm/forge/pkg/wm"
)

// maxBodyBytes bounds event request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// Name labels snapshots, usually the scenario name.
	Name   string
	Logger *log.Logger
}

// Server serves one manager and the display it drives.
type Server struct {
	manager *forge.Manager
	display *wm.Display
	name    string
	logger  *log.Logger
	router  chi.Router
}

// New builds a server and its routes.
func New(m *forge.Manager, d *wm.Display, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		manager: m,
		display: d,
		name:    opts.Name,
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Fields())
	})
	r.Get("/tree", s.handleTree)
	r.Get("/tree.dot", s.handleDOT)
	r.Get("/tree.svg", s.handleSVG)
	r.Get("/placements", s.handlePlacements)
	r.Post("/events", s.handleEvents)
	r.Post("/render", s.handleRender)
	r.Delete("/windows/{id}", s.handleUnmap)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe logs each request and reports it to the server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status,
			"duration", elapsed.Round(time.Microsecond), "id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) snapshot() *snapshot.Snapshot {
	placed := s.display.LastPlacements()
	var snap *snapshot.Snapshot
	s.manager.View(func(t *tree.Tree) {
		snap = snapshot.Capture(t, placed)
	})
	snap.Name = s.name
	return snap
}

func (s *Server) handleTree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	detailed := r.URL.Query().Get("detailed") == "true"
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = io.WriteString(w, nodelink.ToDOT(s.snapshot(), nodelink.Options{Detailed: detailed}))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	detailed := r.URL.Query().Get("detailed") == "true"
	svg, err := nodelink.RenderSVG(r.Context(), nodelink.ToDOT(s.snapshot(), nodelink.Options{Detailed: detailed}))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handlePlacements(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot().Placements)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.manager.Render(r.Context())
	writeJSON(w, http.StatusOK, s.snapshot().Placements)
}

// handleEvents accepts a single event object or an array of events. Events
// are applied in order; the first failure stops the batch and reports how
// many were applied.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	events, err := decodeEvents(body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	for i, e := range events {
		if err := e.Check(); err != nil {
			s.writeError(w, fmt.Errorf("events[%d]: %w", i, err))
			return
		}
	}
	for i, e := range events {
		if err := scenario.Apply(r.Context(), s.manager, s.display, e); err != nil {
			s.logger.Warn("event failed", "event", e, "applied", i, "err", err)
			s.writeError(w, fmt.Errorf("events[%d] %s (applied %d): %w", i, e, i, err))
			return
		}
		s.logger.Debug("event applied", "event", e)
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func decodeEvents(body []byte) ([]scenario.Event, error) {
	var events []scenario.Event
	if err := json.Unmarshal(body, &events); err == nil {
		if len(events) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no events")
		}
		return events, nil
	}
	var e scenario.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode event")
	}
	return []scenario.Event{e}, nil
}

func (s *Server) handleUnmap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e := scenario.Event{Op: scenario.OpUnmap, Window: id}
	if err := e.Check(); err != nil {
		s.writeError(w, err)
		return
	}
	if err := scenario.Apply(r.Context(), s.manager, s.display, e); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := classify(err)
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

// classify maps an error to a code: the outermost coded error wins, then
// the sentinel errors of the tree and the display.
func classify(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	switch {
	case stderrors.Is(err, tree.ErrNodeNotFound), stderrors.Is(err, wm.ErrUnknownWindow):
		return errors.ErrCodeWindowNotFound
	case stderrors.Is(err, tree.ErrParentNotFound):
		return errors.ErrCodeContainerNotFound
	case stderrors.Is(err, tree.ErrDuplicatePayload), stderrors.Is(err, wm.ErrDuplicateWindow):
		return errors.ErrCodeConflict
	case stderrors.Is(err, tree.ErrUnknownLayout):
		return errors.ErrCodeInvalidLayout
	case stderrors.Is(err, tree.ErrUnknownMode):
		return errors.ErrCodeInvalidMode
	case stderrors.Is(err, tree.ErrInvalidPayload), stderrors.Is(err, wm.ErrOutOfRange):
		return errors.ErrCodeInvalidInput
	case stderrors.Is(err, tree.ErrUnsupported):
		return errors.ErrCodeUnsupported
	}
	return errors.ErrCodeInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
