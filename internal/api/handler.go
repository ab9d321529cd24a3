package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"market-snapshot/internal/monitor"
	"market-snapshot/internal/snapshot"
)

// Server wires HTTP endpoints around the snapshot service.
type Server struct {
	Router    *gin.Engine
	Snapshots snapshot.Service
	Metrics   *monitor.ServiceMetrics
	Logger    *zap.Logger
	Meta      SystemMeta
}

// SystemMeta describes runtime status exposed on the status endpoint.
type SystemMeta struct {
	Provider string
	UseMock  bool
	Version  string
}

// NewServer builds the router with the full middleware stack and registers
// all routes. Each request is handled with request-local state only.
func NewServer(snapshots snapshot.Service, metrics *monitor.ServiceMetrics, logger *zap.Logger, meta SystemMeta) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()

	// Middleware stack (order matters: recovery first, then request ID so
	// the logger can pick it up).
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger(logger, metrics))
	r.Use(RateLimitMiddleware(logger))
	r.Use(TimeoutMiddleware(10*time.Second, logger))
	r.Use(CORSMiddleware())

	s := &Server{
		Router:    r,
		Snapshots: snapshots,
		Metrics:   metrics,
		Logger:    logger,
		Meta:      meta,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/metrics", s.getPromMetrics)

	api := s.Router.Group("/api")
	{
		api.GET("/snapshot", s.getSnapshot)
		api.GET("/system/status", s.getSystemStatus)
		api.GET("/metrics", s.getMetrics)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
