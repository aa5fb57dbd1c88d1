// Package api serves report building over HTTP. Every request carries its
// own workbook; the server keeps no per-client state.
package api

import (
	"log"
	"net/http"

	"jobmetrics/app"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP front of the report service
type Server struct {
	router        *gin.Engine
	service       *app.ReportService
	maxUploadSize int64
}

// NewServer creates the server and registers its routes
func NewServer(service *app.ReportService, maxUploadSize int64) *Server {
	s := &Server{
		router:        gin.Default(),
		service:       service,
		maxUploadSize: maxUploadSize,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/reports", s.handleCreateReport)
		v1.GET("/runs", s.handleListRuns)
		v1.GET("/runs/:id", s.handleGetRun)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("[API] Listening on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"run_store": s.service.StoreEnabled(),
	})
}
