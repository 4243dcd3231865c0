package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tabforge/tabforge/internal/ai"
	apihttp "github.com/tabforge/tabforge/internal/api/http"
	"github.com/tabforge/tabforge/internal/api/middleware"
	"github.com/tabforge/tabforge/internal/api/ws"
	"github.com/tabforge/tabforge/internal/domain/tab"
	"github.com/tabforge/tabforge/internal/dynamic"
	"github.com/tabforge/tabforge/internal/infrastructure/config"
	"github.com/tabforge/tabforge/internal/infrastructure/logging"
	"github.com/tabforge/tabforge/internal/infrastructure/monitoring"
	"github.com/tabforge/tabforge/internal/infrastructure/tracing"
	"github.com/tabforge/tabforge/internal/surface"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	engine  *tab.Engine
	client  *ai.Client
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing TabForge server",
		zap.String("port", cfg.Server.Port),
		zap.String("collaborator", cfg.AI.BaseURL),
	)

	// Metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	tracer := tracing.New("tabforge", logger.Logger)

	// AI collaborator client
	client := ai.New(cfg.AI, logger).WithMetrics(metrics)

	// Tab engine
	engine := tab.NewEngine(tab.Config{
		Surface: surface.Config{
			HeightFloor:  cfg.Surface.HeightFloor,
			PollInterval: cfg.Surface.PollInterval,
		},
		Compiler: dynamic.Config{
			Timeout:       cfg.Dynamic.Timeout,
			EntryPoint:    cfg.Dynamic.EntryPoint,
			EnableConsole: cfg.Dynamic.Console,
		},
		QueueSize: cfg.Engine.QueueSize,
	}, client).WithMetrics(metrics)

	// Router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(engine, client, metrics)
	wsHandler := ws.NewHandler(engine, client, logger).WithMetrics(metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Tab lifecycle
	router.POST("/tabs", handlers.GenerateTab)
	router.POST("/tabs/open", handlers.OpenTab)
	router.GET("/tabs/:id", handlers.GetTab)
	router.GET("/tabs/:id/render", handlers.RenderTab)
	router.POST("/tabs/:id/refine", handlers.RefineTab)
	router.GET("/tabs/:id/turns", handlers.GetTurns)
	router.POST("/tabs/:id/navigate", handlers.EvaluateNavigation)
	router.DELETE("/tabs/:id", handlers.CloseTab)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics endpoints
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/metrics/json", handlers.Status)

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		engine:  engine,
		client:  client,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server: every open tab is disposed so
// their surface contexts release before the process exits.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if err := s.engine.Close(); err != nil {
		s.logger.Error("Failed to close tab engine", zap.Error(err))
		return err
	}

	s.logger.Sync()
	return nil
}
