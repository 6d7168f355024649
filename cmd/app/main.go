package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"giveaway-engine/docs"
	"giveaway-engine/internal/common/config"
	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/common/middleware"
	giveawayhttp "giveaway-engine/internal/features/giveaway/delivery/http"
	"giveaway-engine/internal/features/giveaway/eligibility"
	"giveaway-engine/internal/features/giveaway/models/dto"
	"giveaway-engine/internal/features/giveaway/presenter"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/features/giveaway/repository/memory"
	"giveaway-engine/internal/features/giveaway/repository/sqlstore"
	giveawayservice "giveaway-engine/internal/features/giveaway/service"
	"giveaway-engine/internal/platform/otel"
	"giveaway-engine/internal/platform/postgres"
	"giveaway-engine/internal/platform/redis"
	"giveaway-engine/internal/platform/sqlite"
	"giveaway-engine/internal/platform/telegram"
	"giveaway-engine/internal/utils/random"
	"giveaway-engine/internal/workers"
)

const serviceName = "giveaway-engine"

// @title           Giveaway Engine API
// @version         1.0
// @description     Giveaway lifecycle: creation, entries, automatic closing and winner selection.

// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string

// @tag.name giveaways
// @tag.description Giveaway management - creation, participation, closing and rerolls

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(serviceName, cfg.Debug)
	logger.Info().Bool("debug", cfg.Debug).Str("store", cfg.Store.Driver).Msg("Starting giveaway engine")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.Tracing.Endpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up tracing")
	}

	// Хранилище
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open store")
	}

	// Redis опционален: события для бота и lease планировщика
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.OpenFromConfig(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
	}

	var tg *telegram.Client
	if cfg.Telegram.PresenterEnabled || cfg.Telegram.MembershipChecked {
		tg, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.Debug)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to init Telegram client")
		}
	}

	// Правила отбора победителей, пустая цепочка пропускает всех
	var rules eligibility.Chain
	if cfg.Telegram.MinAccountAge > 0 {
		rules = append(rules, eligibility.NewMinAccountAge(cfg.Telegram.MinAccountAge))
	}
	if cfg.Telegram.MembershipChecked {
		rules = append(rules, eligibility.NewChatMembership(tg, 0))
	}

	presenters := presenter.Multi{presenter.Log{}}
	if redisClient != nil {
		presenters = append(presenters, presenter.NewStream(redisClient.Client, cfg.Redis.Stream, cfg.Redis.StreamMaxLen))
	}
	if cfg.Telegram.PresenterEnabled {
		presenters = append(presenters, presenter.NewTelegram(tg))
	}

	source, err := random.NewSecureSource()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed winner selector")
	}
	giveawaySvc := giveawayservice.NewGiveawayService(store, giveawayservice.NewWinnerSelector(source), rules, presenters)

	schedulerCfg := giveawayservice.SchedulerConfig{
		Interval:      cfg.Scheduler.Interval,
		MaxConcurrent: cfg.Scheduler.MaxConcurrent,
	}
	if cfg.Scheduler.UseLease {
		schedulerCfg.Locker = redis.NewLocker(redisClient.Client)
	}
	scheduler := giveawayservice.NewExpiryScheduler(giveawaySvc, giveawaySvc, schedulerCfg)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start expiry scheduler")
	}

	workerDone := make(chan struct{})
	if redisClient != nil {
		worker := workers.NewJoinStreamWorker(redisClient.Client, giveawaySvc, workers.JoinStreamConfig{
			Stream:   cfg.Redis.JoinStream,
			Consumer: cfg.Redis.ConsumerName,
		})
		go func() {
			defer close(workerDone)
			worker.Start(ctx)
		}()
	} else {
		close(workerDone)
	}

	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.Origins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", middleware.InitDataHeader, middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	if cfg.Debug {
		pprof.Register(router)
	}

	var joinAuth gin.HandlerFunc
	if cfg.Telegram.InitDataAuth {
		joinAuth = middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataExpiry)
	}
	var adminAuth []gin.HandlerFunc
	if len(cfg.Telegram.AdminIDs) > 0 {
		adminAuth = []gin.HandlerFunc{
			middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataExpiry),
			middleware.RequireAdmin(cfg.Telegram.AdminIDs),
		}
	}
	giveawayhttp.NewGiveawayHandler(giveawaySvc).RegisterRoutes(router.Group("/api/v1"), joinAuth, adminAuth...)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.Server.Port)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", healthHandler(store, redisClient))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Expiry scheduler did not drain in time")
	}
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn().Msg("Join stream worker did not stop in time")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
	if err := closeStore(); err != nil {
		logger.Error().Err(err).Msg("Failed to close store")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to flush traces")
	}

	logger.Info().Msg("Server exited")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func() error, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		client, err := postgres.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlstore.Migrate(ctx, client.GetDB()); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return sqlstore.NewRepository(client.GetDB(), sqlstore.DialectPostgres), client.Close, nil

	case config.StoreSQLite:
		client, err := sqlite.Open(cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlstore.Migrate(ctx, client.GetDB()); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return sqlstore.NewRepository(client.GetDB(), sqlstore.DialectSQLite), client.Close, nil

	default:
		logger.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.NewRepository(), func() error { return nil }, nil
	}
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func healthHandler(store repository.Store, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := dto.HealthResponse{Status: "ok", Timestamp: time.Now().UTC(), Service: serviceName}

		if err := store.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Store health check failed")
			resp.Status = "store unavailable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Warn().Err(err).Msg("Redis health check failed")
				resp.Status = "redis unavailable"
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}
