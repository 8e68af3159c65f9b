package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/usershub/internal/config"
	"github.com/geocoder89/usershub/internal/http/handlers"
	"github.com/geocoder89/usershub/internal/http/middlewares"
	"github.com/geocoder89/usershub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Users handlers.UsersStore
	// Ping backs /api/ready. nil means always ready.
	Ping func(ctx context.Context) error

	// Prom and Gatherer are optional. Without them no metrics are recorded or exposed.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// middleware, outermost first

	r.Use(middlewares.Recovery(log))
	if cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if cfg.MetricsEnabled && deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.ErrorHandler(log))

	if cfg.MetricsEnabled && deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	health := handlers.NewHealthHandler(deps.Ping)
	users := handlers.NewUsersHandler(deps.Users, cfg.StoreTimeout)

	api := r.Group("/api")
	{
		api.GET("/health", health.Health)
		api.GET("/ready", health.Ready)

		api.GET("/users", users.ListUsers)
		api.GET("/users/:id", users.GetUser)
		api.POST("/users", users.CreateUser)
		api.PUT("/users/:id", users.UpdateUser)
		api.DELETE("/users/:id", users.DeleteUser)
	}

	r.NoRoute(handlers.RespondRouteNotFound)
	r.NoMethod(handlers.RespondRouteNotFound)

	return r
}
