// Package server serves rendered metadata pages over HTTP and runs their form
// submissions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-metaform"
	"github.com/goliatone/go-metaform/internal/output"
	"github.com/goliatone/go-metaform/pkg/form"
	"github.com/goliatone/go-metaform/pkg/meta"
)

// DefaultShutdownGrace bounds how long in-flight requests may finish after
// the serve context is cancelled.
const DefaultShutdownGrace = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithShutdownGrace overrides DefaultShutdownGrace.
func WithShutdownGrace(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.grace = d
		}
	}
}

// Server routes page, submission and schema requests to an engine.
type Server struct {
	engine *metaform.Engine
	log    *log.Logger
	grace  time.Duration
	mux    *http.ServeMux
}

// New creates a server for engine.
func New(engine *metaform.Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		log:    output.Component("server"),
		grace:  DefaultShutdownGrace,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/schema", s.handleSchema)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	s.log.Info("listening", "addr", addr)

	select {
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("stopped")
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.renderPage(w, r)
	case http.MethodPost:
		s.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.RenderPage(r.Context(), r.URL)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeHTML(w, r, http.StatusOK, out)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	sub, err := s.engine.Submit(r.Context(), r.URL, r.PostForm)
	if err != nil {
		s.fail(w, err)
		return
	}
	if sub.Result.Blocked {
		s.log.Debug("submission blocked", "form", sub.FormID, "errors", len(sub.Errors))
		writeHTML(w, r, http.StatusUnprocessableEntity, sub.HTML)
		return
	}
	s.log.Debug("submission accepted", "form", sub.FormID, "fields", len(sub.Result.Payload))
	writeJSON(w, http.StatusOK, sub.Result.Payload)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	spec, err := s.engine.Schema()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// fail maps engine errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, metaform.ErrMissingForm), errors.Is(err, form.ErrNotForm):
		code = http.StatusBadRequest
	case errors.Is(err, meta.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
		http.Error(w, http.StatusText(code), code)
		return
	}
	http.Error(w, err.Error(), code)
}

func writeHTML(w http.ResponseWriter, r *http.Request, code int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
