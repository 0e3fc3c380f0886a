// Package webui serves the steering control page and brokers the WebRTC
// offer between the browser and the on-device stream daemon.
package webui

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/steerctl/internal/config"
	"github.com/danmuck/steerctl/internal/observability"
)

const (
	serviceName = "webctl"
	version     = "0.0.1"
)

// Server is the steering-page HTTP server.
type Server struct {
	cfg     config.WebConfig
	router  *gin.Engine
	proxy   *http.Client
	started time.Time
}

func NewServer(cfg config.WebConfig) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(serviceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		cfg:     cfg,
		router:  r,
		proxy:   &http.Client{Timeout: cfg.ProxyTimeout},
		started: time.Now(),
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(steeringPage))
	})

	s.router.POST("/offer", s.handleOffer)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": serviceName,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	return s.router.Run(s.cfg.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
