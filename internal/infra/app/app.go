package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/config"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/database"
	kafkainfra "github.com/Domis382/Redibo-back-wtt/internal/infra/kafka"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/logger"
	redisinfra "github.com/Domis382/Redibo-back-wtt/internal/infra/redis"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/security"
	postgresrepo "github.com/Domis382/Redibo-back-wtt/internal/repository/postgres"
	redisrepo "github.com/Domis382/Redibo-back-wtt/internal/repository/redis"
	"github.com/Domis382/Redibo-back-wtt/internal/transport/http/handlers"
	"github.com/Domis382/Redibo-back-wtt/internal/transport/http/middleware"
	"github.com/Domis382/Redibo-back-wtt/internal/transport/http/routes"
	"github.com/Domis382/Redibo-back-wtt/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	tokenIssuer, err := security.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	accounts := postgresrepo.NewAccountRepository(pool)
	sessionStore := redisrepo.NewSessionRepository(redisClient.Client(), cfg.Session.KeyPrefix)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "identity:rate-limit",
		TTL:       rateLimitWindow * 2,
	})

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
			producer = nil
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	passwordValidator := security.DefaultPasswordValidator()

	authService := usecase.NewAuthService(cfg, accounts, rateLimitStore, tokenIssuer, passwordValidator, eventPublisher, log)
	federationService := usecase.NewFederationService(accounts, eventPublisher, log)
	sessionService := usecase.NewSessionService(sessionStore, accounts, cfg.Session, log)
	profileService := usecase.NewProfileService(accounts, eventPublisher, log)
	photoService := usecase.NewPhotoService(accounts, eventPublisher, cfg.Uploads, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		TokenIssuer: tokenIssuer,
		OAuth:       oauthConfig,
		Health:      handlers.NewHealthHandler(pool, redisClient),
		Metrics:     metrics,
		Services: routes.ServiceSet{
			Auth:       authService,
			Federation: federationService,
			Sessions:   sessionService,
			Profile:    profileService,
			Photos:     photoService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting identity API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
