package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type UserService interface {
	handlers.Registrar
	handlers.UserDirectory
}

type TokenManager interface {
	handlers.TokenIssuer
	middlewares.TokenVerifier
}

type Deps struct {
	Log     *slog.Logger
	Env     string
	Users   UserService
	Tasks   handlers.TaskRegistry
	Tokens  TokenManager
	Revoker auth.Revoker

	// Prom and Gatherer are optional; /metrics is only mounted with a Gatherer.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Ready map[string]handlers.Pinger

	ServiceName          string
	CORSAllowedOrigins   []string
	MaxBodyBytes         int64
	AuthRateLimit        int
	AuthRateWindow       time.Duration
	RequireAdminForUsers bool
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" && d.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORS(d.CORSAllowedOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))

	// operational
	health := handlers.NewHealthHandler(d.Ready)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	authMW := middlewares.NewAuthMiddleware(d.Tokens, d.Revoker)

	api := r.Group("/")
	if d.MaxBodyBytes > 0 {
		api.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))
	}
	api.Use(middlewares.RequireJSON())

	authH := handlers.NewAuthHandler(d.Users, d.Tokens, d.Revoker, d.Log)
	usersH := handlers.NewUsersHandler(d.Users, d.Log)
	tasksH := handlers.NewTasksHandler(d.Tasks, d.Log)

	limit := middlewares.NewRateLimiter(d.AuthRateLimit, d.AuthRateWindow).RateLimiterMiddleware(middlewares.KeyByIP)
	if d.AuthRateLimit <= 0 {
		limit = func(c *gin.Context) { c.Next() }
	}

	api.POST("/register", limit, authH.Register)
	api.POST("/login", limit, authH.Login)
	api.POST("/logout", authMW.RequireAuth(), authH.Logout)

	users := api.Group("/users")
	if d.RequireAdminForUsers {
		users.Use(authMW.RequireAuth(), middlewares.RequireRole(user.RoleAdmin))
	}
	users.GET("", usersH.List)
	users.DELETE("/:id", usersH.Delete)

	tasks := api.Group("/tasks")
	tasks.GET("", authMW.RequireAuth(), tasksH.ListOwn)
	tasks.POST("", authMW.OptionalAuth(), tasksH.Create)
	tasks.POST("/pending", tasksH.ListPending)
	tasks.POST("/completed", tasksH.ListCompleted)
	tasks.GET("/:id", tasksH.Show)
	tasks.PUT("/:id", tasksH.Update)
	tasks.DELETE("/:id", tasksH.Delete)
	tasks.PUT("/:id/complete", tasksH.Complete)

	return r
}
