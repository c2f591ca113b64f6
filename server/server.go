// Package server serves the editor to a browser: a static page, a JSON
// API over per-session editors and a WebSocket for crop pointer events.
package server

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/canvas"
	"github.com/gogpu/ggedit/preset"
)

//go:embed static
var staticFiles embed.FS

// Default limits.
const (
	DefaultMaxUpload  = 20 << 20
	DefaultSessionTTL = time.Hour
)

// Option configures a Server.
type Option func(*options)

type options struct {
	editorOpts []ggedit.EditorOption
	presets    *preset.Registry
	maxUpload  int64
	sessionTTL time.Duration
	logger     *slog.Logger
}

// WithEditorOptions sets the options every new session's editor gets.
func WithEditorOptions(opts ...ggedit.EditorOption) Option {
	return func(o *options) { o.editorOpts = append(o.editorOpts, opts...) }
}

// WithPresets shares a preset registry between all sessions.
func WithPresets(r *preset.Registry) Option {
	return func(o *options) { o.presets = r }
}

// WithMaxUpload limits the size of an uploaded image in bytes.
func WithMaxUpload(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUpload = n
		}
	}
}

// WithSessionTTL sets how long an idle session is kept. Zero keeps
// sessions forever.
func WithSessionTTL(d time.Duration) Option {
	return func(o *options) { o.sessionTTL = d }
}

// WithLogger sets the server logger. The default is ggedit.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Server is an http.Handler for the editor front end.
type Server struct {
	opts     options
	store    *Store
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

// New creates a Server.
func New(opts ...Option) *Server {
	o := options{
		maxUpload:  DefaultMaxUpload,
		sessionTTL: DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.presets == nil {
		o.presets = preset.Default()
	}

	s := &Server{opts: o, mux: http.NewServeMux()}
	edOpts := append([]ggedit.EditorOption{ggedit.WithPresets(o.presets)}, o.editorOpts...)
	s.store = NewStore(o.sessionTTL, func() (*ggedit.Editor, error) {
		return ggedit.NewEditor(edOpts...)
	})
	s.routes()
	return s
}

// Store returns the session store.
func (s *Server) Store() *Store { return s.store }

func (s *Server) log() *slog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}
	return ggedit.Logger()
}

func (s *Server) routes() {
	static, _ := fs.Sub(staticFiles, "static")
	s.mux.Handle("GET /", http.FileServerFS(static))

	s.mux.HandleFunc("GET /api/presets", s.handlePresets)
	s.mux.HandleFunc("GET /api/filters", s.handleFilters)

	s.mux.HandleFunc("POST /api/sessions", s.handleCreate)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.withEditor(s.handleState))
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDelete)
	s.mux.HandleFunc("POST /api/sessions/{id}/image", s.withEditor(s.handleUpload))
	s.mux.HandleFunc("POST /api/sessions/{id}/filter", s.withEditor(s.handleFilter))
	s.mux.HandleFunc("POST /api/sessions/{id}/preset", s.withEditor(s.handlePreset))
	s.mux.HandleFunc("POST /api/sessions/{id}/rotate", s.withEditor(s.handleRotate))
	s.mux.HandleFunc("POST /api/sessions/{id}/flip", s.withEditor(s.handleFlip))
	s.mux.HandleFunc("POST /api/sessions/{id}/circle", s.withEditor(s.handleCircle))
	s.mux.HandleFunc("POST /api/sessions/{id}/crop", s.withEditor(s.handleCrop))
	s.mux.HandleFunc("POST /api/sessions/{id}/adjust", s.withEditor(s.handleAdjust))
	s.mux.HandleFunc("POST /api/sessions/{id}/undo", s.withEditor(s.handleUndo))
	s.mux.HandleFunc("POST /api/sessions/{id}/redo", s.withEditor(s.handleRedo))
	s.mux.HandleFunc("POST /api/sessions/{id}/select", s.withEditor(s.handleSelect))
	s.mux.HandleFunc("POST /api/sessions/{id}/resize", s.withEditor(s.handleResize))
	s.mux.HandleFunc("POST /api/sessions/{id}/zoom", s.withEditor(s.handleZoom))
	s.mux.HandleFunc("GET /api/sessions/{id}/render.png", s.withEditor(s.handleRender))
	s.mux.HandleFunc("GET /api/sessions/{id}/export", s.withEditor(s.handleExport))

	s.mux.HandleFunc("GET /ws/{id}", s.withEditor(s.handleWS))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log().Debug("request", "method", r.Method, "path", r.URL.Path,
		"status", rec.status, "duration", time.Since(start))
}

// ListenAndServe serves on addr until ctx is done, sweeping idle
// sessions in the background.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.store.Run(ctx, time.Minute)
	go func() {
		<-ctx.Done()
		shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdown)
	}()

	s.log().Info("server started", "addr", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack lets the WebSocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

// statusOf maps an error to an HTTP status.
func statusOf(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig), errors.Is(err, canvas.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNoSession),
		errors.Is(err, ggedit.ErrUnknownPreset),
		errors.Is(err, ggedit.ErrUnknownFilter):
		return http.StatusNotFound
	case errors.Is(err, ggedit.ErrNoImage):
		return http.StatusConflict
	case errors.Is(err, canvas.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ggedit.ErrInvalidArgument), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		s.log().Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
