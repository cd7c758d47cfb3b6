package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskmanager/task-api/docs"
	"github.com/taskmanager/task-api/internal/api/credential"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/authz"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// Dependencies are the collaborators the router wires into handlers and
// middleware.
type Dependencies struct {
	Log           zerolog.Logger
	Transport     *credential.Transport
	Authenticator ports.Authenticator
	Authorizer    *authz.Authorizer
	AuthService   ports.AuthService
	UserService   ports.UserService
	// Readiness lists the dependencies /health/ready pings.
	Readiness map[string]handler.Pinger
	// Registry receives the HTTP metrics and serves /metrics. Nil uses the
	// default Prometheus registry, which also holds the auth counters.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "taskapi",
		Registerer: registerer,
	}))

	authn := middleware.NewAuthentication(deps.Transport, deps.Authenticator, deps.Log)
	admin := middleware.RequireExactRole(deps.Authorizer, domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Transport)
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register, authn.Optional())
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, authn.Required())
	auth.GET("/profile", authHandler.Profile, authn.Required())
	auth.POST("/refresh", authHandler.Refresh, authn.Required())
	auth.GET("/verify", authHandler.Verify, authn.Required())

	// --- User routes (authenticated) ---
	userHandler := handler.NewUserHandler(deps.UserService)
	users := e.Group("/api/users", authn.Required())
	users.GET("", userHandler.List, admin)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.PUT("/change-password", userHandler.ChangePassword)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id/profile", userHandler.UpdateProfile)
	users.PUT("/:id/password", userHandler.ChangePassword)
	users.PUT("/:id/role", userHandler.UpdateRole, admin)
	users.PUT("/:id/status", userHandler.UpdateStatus, admin)
	users.DELETE("/:id", userHandler.Delete, admin)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: pings the user store
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
