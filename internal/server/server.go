package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/internal/sessionid"
	"github.com/lox/rockpaperscissors/internal/web"
	"github.com/lox/rockpaperscissors/rps"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Option configures a Server during creation
type Option func(*Server)

// WithConfig sets the default mode and shuffle timing. Default: DefaultConfig().
func WithConfig(config Config) Option {
	return func(s *Server) { s.config = config }
}

// WithClock injects the clock handed to every session
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithPicker sets the computer's picker shared by all sessions
func WithPicker(picker rps.Picker) Option {
	return func(s *Server) { s.picker = picker }
}

// WithRegistry sets the Prometheus registry served on /metrics
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) { s.registry = registry }
}

// Server serves the game page and one game session per WebSocket connection
type Server struct {
	config      Config
	clock       quartz.Clock
	picker      rps.Picker
	registry    *prometheus.Registry
	metrics     *Metrics
	upgrader    websocket.Upgrader
	connections map[string]*Connection
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	handler     http.Handler
	httpServer  *http.Server
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewServer creates a new game server
func NewServer(logger *log.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config: DefaultConfig(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.picker == nil {
		s.picker = rps.NewRandomPicker(nil)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	s.handler = s.routes()

	go s.run()
	return s
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	templates := web.Templates()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		mode := s.config.Mode
		if q := r.URL.Query().Get("mode"); q != "" {
			parsed, err := game.ParseMode(q)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			mode = parsed
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ExecuteTemplate(w, "index.html.tmpl", pageData(mode)); err != nil {
			s.logger.Error("Failed to render page", "error", err)
		}
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(web.StaticFS())))
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

func pageData(mode game.Mode) web.PageData {
	data := web.PageData{Title: "Rock Paper Scissors", Mode: mode.String()}
	for _, c := range rps.Choices {
		data.Choices = append(data.Choices, web.ChoiceButton{
			Value: c.String(),
			Label: c.Title(),
			Emoji: c.Emoji(),
		})
	}
	return data
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting server", "addr", addr, "mode", s.config.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops the HTTP server, closes every connection and its session
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.httpServer
	s.mu.RUnlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.cancel()

	s.mu.Lock()
	for id, conn := range s.connections {
		_ = conn.Close()
		conn.Session().Close()
		s.metrics.sessionClosed()
		delete(s.connections, id)
	}
	s.mu.Unlock()

	s.logger.Info("Server stopped")
	return err
}

// ConnectionCount returns the number of connected sessions
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn.ID()] = conn
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "session", conn.ID(), "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn.ID()]
			delete(s.connections, conn.ID())
			total := len(s.connections)
			s.mu.Unlock()
			if !ok {
				continue
			}
			conn.Session().Close()
			s.metrics.sessionClosed()
			s.logger.Info("Client disconnected", "session", conn.ID(), "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket upgrades the request and starts a fresh session for it
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	mode := s.config.Mode
	if q := r.URL.Query().Get("mode"); q != "" {
		parsed, err := game.ParseMode(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode = parsed
	}

	id, err := sessionid.New()
	if err != nil {
		s.logger.Error("Failed to allocate session id", "error", err)
		http.Error(w, "failed to allocate session id", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	session := game.NewSession(
		game.WithMode(mode),
		game.WithTiming(s.config.Timing),
		game.WithClock(s.clock),
		game.WithPicker(s.picker),
		game.WithLogger(s.logger.With("session", id)),
		game.WithSubscriber(s.metrics),
	)

	client := NewConnection(conn, id, session, s.logger)

	s.metrics.sessionOpened()
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		s.metrics.sessionClosed()
		session.Close()
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
