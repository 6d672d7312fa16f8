package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmoesl/leadscore/api/handlers"
	"github.com/tmoesl/leadscore/api/middleware"
	"github.com/tmoesl/leadscore/internal/metrics"
	"github.com/tmoesl/leadscore/internal/model"
	"github.com/tmoesl/leadscore/internal/predictor"
	"github.com/tmoesl/leadscore/pkg/config"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.Config
	clf        model.Classifier
}

func NewServer(cfg config.Config, clf model.Classifier) *Server {
	if cfg.App.Mode == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.New(),
		config: cfg,
		clf:    clf,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger())

	if s.config.API.MaxBodyBytes > 0 {
		s.router.Use(middleware.RequestSizeLimit(s.config.API.MaxBodyBytes))
	}

	if s.config.API.RateLimit > 0 {
		s.router.Use(middleware.RateLimit(middleware.NewRateLimiter(s.config.API.RateLimit)))
	}
}

func (s *Server) setupRoutes() {
	svc := predictor.New(s.clf)

	predictHandler := handlers.NewPredictHandler(svc)
	healthHandler := handlers.NewHealthHandler(s.clf)

	s.router.GET("/", predictHandler.Root)
	s.router.POST("/predict/", predictHandler.Predict)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	if s.config.Prometheus.Enabled {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  s.config.API.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
