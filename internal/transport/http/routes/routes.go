package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Domis382/Redibo-back-wtt/internal/infra/config"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/security"
	"github.com/Domis382/Redibo-back-wtt/internal/transport/http/handlers"
	"github.com/Domis382/Redibo-back-wtt/internal/transport/http/middleware"
	"github.com/Domis382/Redibo-back-wtt/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth       *usecase.AuthService
	Federation *usecase.FederationService
	Sessions   *usecase.SessionService
	Profile    *usecase.ProfileService
	Photos     *usecase.PhotoService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Services    ServiceSet
	TokenIssuer *security.TokenIssuer
	OAuth       *oauth2.Config
	Health      *handlers.HealthHandler
	Metrics     *middleware.HTTPMetrics
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS([]string{deps.Config.App.FrontendURL}))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	health := deps.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil, nil)
	}
	r.GET("/healthz", health.Status)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Stored photos are served straight from the uploads tree.
	r.Static("/uploads", deps.Config.Uploads.Directory)

	authenticator := middleware.NewAuthenticator(deps.TokenIssuer, deps.Services.Sessions, deps.Config.Session.CookieName)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")

		authHandler := handlers.NewAuthHandler(deps.Services.Auth, authenticator)
		authHandler.RegisterRoutes(authGroup)

		profileHandler := handlers.NewProfileHandler(deps.Services.Profile, authenticator)
		profileHandler.RegisterRoutes(authGroup)

		photoHandler := handlers.NewPhotoHandler(deps.Services.Photos, deps.Services.Auth, authenticator)
		photoHandler.RegisterRoutes(authGroup)

		oauthHandler := handlers.NewOAuthHandler(
			deps.Services.Federation,
			deps.Services.Sessions,
			authenticator,
			deps.OAuth,
			deps.Config.Session,
			deps.Config.App.FrontendURL,
			deps.Logger,
		)
		oauthHandler.RegisterRoutes(authGroup)
	}

	return r
}
