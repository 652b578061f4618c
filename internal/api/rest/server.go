package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/birka/schema/web"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Config holds the listener settings
type Config struct {
	Port      string
	StaticDir string
}

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server. ws may be nil.
func NewServer(cfg Config, handler *Handler, ws WebsocketHandler, logger logrus.FieldLogger) *Server {
	router := NewRouter(cfg, handler, ws, logger)

	return &Server{
		port:    cfg.Port,
		handler: handler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// WebsocketHandler serves the annotation change stream
type WebsocketHandler interface {
	http.Handler
	HandleHealth(w http.ResponseWriter, r *http.Request)
}

// NewRouter wires every route onto a mux router
func NewRouter(cfg Config, handler *Handler, ws WebsocketHandler, logger logrus.FieldLogger) *mux.Router {
	static := staticHandler(cfg.StaticDir)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware)

	// Health and metrics
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Schedule and annotations
	router.HandleFunc("/schedule", handler.GetSchedule).Methods("GET")
	router.HandleFunc("/annotations", handler.GetAnnotations).Methods("GET")
	router.HandleFunc("/priorities/toggle", handler.TogglePriority).Methods("POST", "OPTIONS")
	router.HandleFunc("/tags/toggle", handler.ToggleTag).Methods("POST", "OPTIONS")

	if ws != nil {
		router.Handle("/ws", ws).Methods("GET")
		router.HandleFunc("/ws/health", ws.HandleHealth).Methods("GET")
	}

	// Everything else is the bundled client
	router.PathPrefix("/").Handler(static).Methods("GET", "HEAD")

	return router
}

// staticHandler serves dir when set, the embedded client otherwise
func staticHandler(dir string) http.Handler {
	if dir != "" {
		return http.FileServer(http.Dir(dir))
	}
	return http.FileServer(http.FS(web.FS))
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
