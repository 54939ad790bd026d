// Package ui serves the dashboard pages and the JSON chart and model API.
package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"gundash/domain/incident"
	"gundash/internal/api"
	"gundash/internal/container"
	"gundash/internal/dashboard"
	"gundash/internal/dataset"
	"gundash/internal/intent"
	"gundash/internal/profiling"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static content/*.md
var embeddedFiles embed.FS

// Server represents the web server for the dashboard
type Server struct {
	router    *gin.Engine
	templates *template.Template
	copy      pageCopy

	dataset  *dataset.Cache
	catalog  *dashboard.Catalog
	models   *intent.Service
	profiler *profiling.DataProfiler
	hub      *api.SSEHub
}

// NewServer creates a web server over the container's services
func NewServer(c *container.Container) (*Server, error) {
	if c == nil || c.Dataset == nil || c.Catalog == nil || c.Models == nil {
		return nil, fmt.Errorf("container is not initialized")
	}

	s := &Server{
		router:   gin.Default(),
		dataset:  c.Dataset,
		catalog:  c.Catalog,
		models:   c.Models,
		profiler: c.Profiler,
		hub:      c.SSEHub,
	}

	tmpl, err := parseTemplates(embeddedFiles)
	if err != nil {
		return nil, err
	}
	s.templates = tmpl

	pc, err := loadPageCopy(embeddedFiles)
	if err != nil {
		return nil, err
	}
	s.copy = pc

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupMiddleware serves static files from the embedded filesystem
func (s *Server) setupMiddleware() error {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	// Pages
	s.router.GET("/", s.handleIndex)
	s.router.GET("/insights", s.handleInsights)
	s.router.GET("/model", s.handleModelPage)
	s.router.GET("/health", s.handleHealth)

	apiGroup := s.router.Group("/api")
	{
		apiGroup.GET("/dataset/info", s.handleDatasetInfo)

		apiGroup.GET("/charts", s.handleChartList)
		apiGroup.GET("/charts/:id", s.handleChartSpec)
		apiGroup.GET("/charts/:id/aggregate", s.handleChartAggregate)
		apiGroup.GET("/charts/:id/export", s.handleChartExport)

		apiGroup.POST("/model/train", s.handleTrain)
		apiGroup.POST("/model/predict", s.handlePredict)
		apiGroup.GET("/model/latest", s.handleLatestModel)
		apiGroup.GET("/model/plot.png", s.handleModelPlot)
		apiGroup.GET("/models", s.handleModelList)
		apiGroup.DELETE("/models/:id", s.handleModelDelete)

		if s.hub != nil {
			apiGroup.GET("/events", s.hub.HandleSSE)
		}
	}
}

// Handler exposes the router for an http.Server or httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down within grace.
// Event streams are closed first so open SSE connections do not hold shutdown.
func (s *Server) Start(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting dashboard on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("Shutting down dashboard")
	if s.hub != nil {
		s.hub.Close()
	}
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(sctx)
}

// table loads the current dataset
func (s *Server) table(c *gin.Context) (*incident.Table, bool) {
	t, err := s.dataset.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return t, true
}
