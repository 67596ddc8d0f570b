// Package ui serves the dashboard page and its JSON API.
package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"happydash/app"
	"happydash/domain/happiness"
	"happydash/internal/loader"
	"happydash/ui/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Options configures the dashboard server
type Options struct {
	Title     string
	IntroFile string
	GinMode   string
}

// Server represents the web server of the dashboard
type Server struct {
	router    *gin.Engine
	service   *app.DashboardService
	loader    *loader.Loader
	templates *template.Template
	intro     template.HTML
	title     string
	logger    *zap.Logger
	httpSrv   *http.Server
}

// NewServer creates the server and registers every route
func NewServer(service *app.DashboardService, l *loader.Loader, opts Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}

	templates, err := template.New("").Funcs(templateFuncs()).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	intro, err := loadIntro(opts.IntroFile)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		loader:    l,
		templates: templates,
		intro:     intro,
		title:     opts.Title,
		logger:    logger,
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"fmtNum": func(v interface{}) string {
			switch t := v.(type) {
			case float64:
				return happiness.FormatNumber(t)
			case happiness.Number:
				return happiness.FormatNumber(float64(t))
			case int:
				return strconv.Itoa(t)
			default:
				return happiness.Placeholder
			}
		},
		"rank": happiness.FormatRank,
		"contains": func(list []string, s string) bool {
			for _, item := range list {
				if item == s {
					return true
				}
			}
			return false
		},
		"join": strings.Join,
	}
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() error {
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Recovery(s.logger))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	api := s.router.Group("/api")
	api.GET("/options", s.handleOptions)
	api.GET("/observations", s.handleObservations)
	api.GET("/history", s.handleHistory)
	api.GET("/stats", s.handleStats)
	api.GET("/charts", s.handleCharts)
	api.GET("/charts/:kind", s.handleChart)
	api.GET("/data.csv", s.handleDataCSV)
	api.GET("/png/:kind", s.handlePNG)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("dashboard listening", zap.String("addr", addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
