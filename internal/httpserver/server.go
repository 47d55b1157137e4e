package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"agentload/internal/metrics"
	"agentload/internal/stats"
)

// Scanner produces a fresh scan result. *stats.Engine satisfies it.
type Scanner interface {
	Run(ctx context.Context) (*stats.Result, error)
}

// Options configures background rescans.
type Options struct {
	Version   string
	Schedule  string // cron spec for periodic rescans; empty disables them
	Watch     bool
	WatchRoot string
	Debounce  time.Duration
}

// HTTPServer serves the latest report and pushes updates to WebSocket clients
type HTTPServer struct {
	mux     *http.ServeMux
	scanner Scanner
	logger  zerolog.Logger
	opts    Options
	hub     *hub

	scanMu sync.Mutex // serializes scans

	mu       sync.RWMutex
	latest   *stats.Result
	lastScan time.Time
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(scanner Scanner, logger zerolog.Logger, opts Options) *HTTPServer {
	s := &HTTPServer{
		mux:     http.NewServeMux(),
		scanner: scanner,
		logger:  logger.With().Str("component", "http").Logger(),
		opts:    opts,
		hub:     newHub(),
	}

	s.registerRoutes()

	return s
}

// registerRoutes sets up all HTTP routes with middleware
func (s *HTTPServer) registerRoutes() {
	s.mux.HandleFunc("/health", loggingMiddleware(s.logger, methodMiddleware(http.MethodGet, s.handleHealth)))
	s.mux.HandleFunc("/report", loggingMiddleware(s.logger, methodMiddleware(http.MethodGet, s.handleReport)))
	s.mux.HandleFunc("/report/refresh", loggingMiddleware(s.logger, methodMiddleware(http.MethodPost, s.handleRefresh)))
	s.mux.HandleFunc("/report/ws", loggingMiddleware(s.logger, methodMiddleware(http.MethodGet, s.handleWebSocket)))
	s.mux.Handle("/metrics", metrics.Handler())
}

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

// Scan runs a scan, stores the result and pushes it to WebSocket clients.
// A failed scan is pushed as an error message and keeps the previous result.
func (s *HTTPServer) Scan(ctx context.Context) (*stats.Result, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	res, err := s.scanner.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.hub.broadcast(wsMessage{Type: "error", Error: err.Error()})
		}
		return nil, err
	}

	s.mu.Lock()
	s.latest = res
	s.lastScan = time.Now()
	s.mu.Unlock()

	metrics.Observe(res)
	s.hub.broadcast(wsMessage{Type: "report", Report: &res.Report})
	s.logger.Info().
		Float64("main_hours", res.Report.MainHours).
		Float64("sub_hours", res.Report.SubagentHours).
		Int("ghost_days", res.Report.GhostDays).
		Msg("Scan complete")

	return res, nil
}

// Latest returns the stored result, scanning first if there is none.
func (s *HTTPServer) Latest(ctx context.Context) (*stats.Result, time.Time, error) {
	s.mu.RLock()
	res, at := s.latest, s.lastScan
	s.mu.RUnlock()
	if res != nil {
		return res, at, nil
	}

	res, err := s.Scan(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	s.mu.RLock()
	at = s.lastScan
	s.mu.RUnlock()
	return res, at, nil
}

// Serve accepts connections on ln until ctx is cancelled, rescanning in
// the background per Options.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.rescanLoop(bgCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting server")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Stopping server")
		s.hub.closeAll()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	}
}

// ListenAndServe starts the HTTP server on the given address
func (s *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// rescanLoop triggers scans on the cron schedule and on debounced
// filesystem changes.
func (s *HTTPServer) rescanLoop(ctx context.Context) {
	due := make(chan struct{}, 1)
	if s.opts.Schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(s.opts.Schedule, func() {
			select {
			case due <- struct{}{}:
			default:
			}
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("schedule", s.opts.Schedule).Msg("Periodic rescans disabled")
		} else {
			c.Start()
			defer func() { <-c.Stop().Done() }()
		}
	}

	var changed <-chan struct{}
	if s.opts.Watch && s.opts.WatchRoot != "" {
		w, err := newWatcher(s.opts.WatchRoot, s.opts.Debounce, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Str("root", s.opts.WatchRoot).Msg("File watching disabled")
		} else {
			defer w.Close()
			changed = w.Changed()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-due:
		case <-changed:
			s.logger.Debug().Msg("Session files changed")
		}
		if _, err := s.Scan(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("Background scan failed")
		}
	}
}
