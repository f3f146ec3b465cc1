package httpserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/config"
	charterdomain "charterhub/charter-api/internal/domain/charter"
	draftdomain "charterhub/charter-api/internal/domain/draft"
	mediadomain "charterhub/charter-api/internal/domain/media"
	"charterhub/charter-api/internal/infrastructure/auth"
	"charterhub/charter-api/internal/interfaces/httpserver/handlers"
	"charterhub/charter-api/internal/interfaces/httpserver/middlewares"
	v1 "charterhub/charter-api/internal/interfaces/httpserver/routes/v1"
)

// HTTPServer wraps the gin engine with graceful shutdown helpers.
type HTTPServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
	auth   *auth.Validator
}

// Readiness reports whether backing services can take traffic.
type Readiness interface {
	Ready(ctx context.Context) error
}

// New constructs the HTTP server with default middleware and routes.
func New(
	cfg *config.Config,
	log zerolog.Logger,
	drafts *draftdomain.Service,
	finalize *charterdomain.Service,
	media *mediadomain.Service,
	processor *mediadomain.Processor,
	authValidator *auth.Validator,
	readiness Readiness,
) *HTTPServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.RequestID())
	engine.Use(middlewares.Tracing(cfg.ServiceName))
	engine.Use(middlewares.Metrics())
	engine.Use(middlewares.CORS())
	engine.Use(middlewares.RequestLoggerWithLogger(log))

	registerCoreRoutes(engine, cfg, authValidator, readiness)

	handlerProvider := handlers.NewProvider(cfg, drafts, finalize, media, processor, log)
	routeProvider := v1.NewRoutes(handlerProvider)

	api := engine.Group("/")
	api.Use(authValidator.Middleware())
	routeProvider.Register(api)

	workers := engine.Group("/workers")
	workers.Use(workerTokenGuard(cfg))
	workers.POST("/transcode", handlerProvider.Worker.Transcode)

	return &HTTPServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
		auth:   authValidator,
	}
}

// Engine exposes the router for handler tests.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context
// cancellation.
func (s *HTTPServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("charter-api HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config, authValidator *auth.Validator, readiness Readiness) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": cfg.ServiceName, "status": "ok"})
	})
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		if authValidator != nil && !authValidator.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "initializing"})
			return
		}
		if readiness != nil {
			if err := readiness.Ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// workerTokenGuard protects the queue delivery route with the shared worker
// token. Without a configured token the route only makes sense in
// development and is left open.
func workerTokenGuard(cfg *config.Config) gin.HandlerFunc {
	token := strings.TrimSpace(cfg.WorkerQueueToken)
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		presented := bearerToken(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid worker token"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
