// Package server 通过 HTTP JSON 接口对外提供管理服务，供界面层调用
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hatlonely/hms/admin"
	"github.com/hatlonely/hms/log"
	"github.com/hatlonely/hms/log/logger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type Options struct {
	Addr string `cfg:"addr" def:":8080"`

	// AllowedOrigins CORS 允许的来源
	AllowedOrigins []string `cfg:"allowedOrigins" def:"*"`

	ReadTimeout     time.Duration `cfg:"readTimeout" def:"10s"`
	WriteTimeout    time.Duration `cfg:"writeTimeout" def:"60s"`
	ShutdownTimeout time.Duration `cfg:"shutdownTimeout" def:"5s"`

	// MetricsPath 为空时不暴露指标
	MetricsPath string `cfg:"metricsPath" def:"/metrics"`
}

type Server struct {
	service *admin.Service
	logger  logger.Logger
	handler http.Handler
	options *Options
}

// NewServerWithOptions gatherer 为 nil 时使用默认 registry
func NewServerWithOptions(options *Options, service *admin.Service, l logger.Logger, gatherer prometheus.Gatherer) (*Server, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if service == nil {
		return nil, errors.New("service is nil")
	}
	if l == nil {
		l = log.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		service: service,
		logger:  l.WithGroup("server"),
		options: options,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/entities", s.handleListEntities)
	mux.HandleFunc("GET /api/entities/{entity}", s.handleReadAll)
	mux.HandleFunc("GET /api/entities/{entity}/{id}", s.handleGet)
	mux.HandleFunc("POST /api/entities/{entity}", s.handleCreate)
	mux.HandleFunc("POST /api/entities/{entity}/check", s.handleCheckField)
	mux.HandleFunc("PUT /api/entities/{entity}/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/entities/{entity}/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/queries", s.handleListCategories)
	mux.HandleFunc("GET /api/queries/{category}", s.handleListQueries)
	mux.HandleFunc("POST /api/queries/run", s.handleRunQuery)
	mux.HandleFunc("POST /api/queries/custom", s.handleRunCustom)
	mux.HandleFunc("GET /api/audit", s.handleAudit)
	if options.MetricsPath != "" {
		mux.Handle("GET "+options.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	origins := options.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", operatorHeader},
	})
	s.handler = c.Handler(s.accessLog(mux))

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run 阻塞直到 ctx 取消或监听失败，ctx 取消后在 ShutdownTimeout 内优雅退出
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.options.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.options.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "ListenAndServe failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown failed")
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
