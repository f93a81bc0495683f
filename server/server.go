package server

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattLLVW/gifgrid/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

//go:embed templates/*.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

// FrameCache stores gifs already rendered for terminals.
type FrameCache interface {
	Exists(ctx context.Context, id string) (bool, error)
	Frames(ctx context.Context, id string, rev bool) ([]models.RenderedImg, error)
	Save(ctx context.Context, id string, frames []models.RenderedImg) error
}

type Server struct {
	searcher      models.Searcher
	doer          models.Doer
	frames        FrameCache
	visitors      *visitors
	registry      *prometheus.Registry
	downloadHosts []string
	logWriter     io.Writer
	sleep         func(time.Duration)
}

type Option func(*Server)

// WithDoer sets the http client used to download gifs.
func WithDoer(doer models.Doer) Option {
	return func(s *Server) { s.doer = doer }
}

// WithFrameCache enables storage of rendered terminal frames.
func WithFrameCache(cache FrameCache) Option {
	return func(s *Server) { s.frames = cache }
}

func WithRateLimit(limit float64, burst int) Option {
	return func(s *Server) { s.visitors = newVisitors(rate.Limit(limit), burst) }
}

// WithDownloadHosts restricts /download to these hosts and their subdomains.
func WithDownloadHosts(hosts ...string) Option {
	return func(s *Server) { s.downloadHosts = hosts }
}

// WithLogWriter sets where access logs are written.
func WithLogWriter(w io.Writer) Option {
	return func(s *Server) { s.logWriter = w }
}

func New(searcher models.Searcher, opts ...Option) *Server {
	s := &Server{
		doer:          &http.Client{Timeout: 30 * time.Second},
		visitors:      newVisitors(1, 3),
		registry:      prometheus.NewRegistry(),
		downloadHosts: []string{"giphy.com"},
		logWriter:     os.Stdout,
		sleep:         time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	if c, ok := s.doer.(*http.Client); ok {
		client := *c
		client.CheckRedirect = s.checkRedirect
		s.doer = &client
	}
	s.searcher = &instrumentedSearcher{next: searcher, metrics: newMetrics(s.registry)}
	return s
}

// Router returns the routes without any middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/search", s.apiSearchHandler).Methods(http.MethodGet)
	r.HandleFunc("/download", s.downloadHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/favicon.ico", http.NotFound).Methods(http.MethodGet)
	r.HandleFunc("/{search}", s.conditionalHandler).Methods(http.MethodGet)
	r.PathPrefix("/").HandlerFunc(s.indexHandler).Methods(http.MethodGet)
	return r
}

// Handler returns the routes wrapped with recovery, access log and rate limit.
func (s *Server) Handler() http.Handler {
	return handlers.RecoveryHandler()(handlers.LoggingHandler(s.logWriter, s.visitors.middleware(s.Router())))
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.visitors.cleanup(ctx, time.Minute, 3*time.Minute)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
