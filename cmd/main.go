package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/db"
	"github.com/Dosada05/tournament-engine/directory"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/leaderboard"
	"github.com/Dosada05/tournament-engine/ranking"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
	api "github.com/Dosada05/tournament-engine/routes"
	"github.com/Dosada05/tournament-engine/seeding"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/Dosada05/tournament-engine/storage"
)

// @title Tournament Engine API
// @version 1.0
// @description Движок турнирных сеток: олимпийка, круговая система, группы с плей-офф, лестница.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer-токен организатора: "Bearer <token>"

const shutdownTimeout = 15 * time.Second

// repositorySet собирает хранилище, выбранное STORAGE_DRIVER.
type repositorySet struct {
	tx           repositories.TxManager
	tournaments  repositories.TournamentRepository
	participants repositories.ParticipantRepository
	matches      repositories.MatchRepository
	standings    repositories.StandingRepository
	directory    directory.ParticipantDirectory
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver),
		slog.Bool("redis", cfg.RedisEnabled()),
		slog.Bool("archive", cfg.ArchiveEnabled()),
	)

	var (
		dbConn *sql.DB
		repos  repositorySet
	)
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		// Подключение к базе данных
		dbConn, err = db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		logger.Info("database connection established")

		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.Migrate(migrateCtx, dbConn)
		cancelMigrate()
		if err != nil {
			logger.Error("failed to apply database migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database schema is up to date")

		repos = repositorySet{
			tx:           repositories.NewPostgresTxManager(dbConn, logger),
			tournaments:  repositories.NewPostgresTournamentRepository(dbConn),
			participants: repositories.NewPostgresParticipantRepository(dbConn),
			matches:      repositories.NewPostgresMatchRepository(dbConn),
			standings:    repositories.NewPostgresStandingRepository(dbConn),
			directory:    directory.NewPostgresDirectory(dbConn, logger),
		}
	case config.StorageDriverMemory:
		store := repositories.NewMemoryStore()
		repos = repositorySet{
			tx:           store,
			tournaments:  store.Tournaments(),
			participants: store.Participants(),
			matches:      store.Matches(),
			standings:    store.Standings(),
			directory:    directory.StaticDirectory{},
		}
		logger.Warn("using in-memory storage, data is lost on restart")
	}
	logger.Info("Repositories initialized")

	// Шина событий и подписчики живут до остановки сервера
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	bus := events.NewBus(logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error("failed to close event bus", slog.Any("error", err))
		}
	}()

	var redisClient *redis.Client
	var board leaderboard.Leaderboard = leaderboard.NewMemoryLeaderboard()
	if cfg.RedisEnabled() {
		redisClient, err = db.ConnectRedis(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("failed to close redis connection", slog.Any("error", err))
			}
		}()
		board = leaderboard.NewRedisLeaderboard(redisClient)
		logger.Info("redis connection established")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		wsHub.Run(appCtx)
	}()
	logger.Info("WebSocket Hub started")

	// Источник внешних рейтингов для посева (опционально)
	var rankings seeding.RankingSource
	if cfg.RankingURLTemplate != "" {
		rankings = ranking.NewHTMLRankingSource(cfg.RankingURLTemplate, nil)
		logger.Info("external ranking source configured")
	}
	seeder := seeding.NewSeeder(directory.Ratings{Directory: repos.directory}, rankings, logger)

	// Инициализация сервисов
	tournamentService := services.NewTournamentService(repos.tx, repos.tournaments, repos.participants, repos.matches, repos.standings, bus, logger)
	participantService := services.NewParticipantService(repos.tx, repos.tournaments, repos.participants, repos.directory, logger)
	seedingService := services.NewSeedingService(repos.tx, repos.tournaments, repos.participants, seeder, logger)
	bracketService := services.NewBracketService(repos.tx, repos.tournaments, repos.participants, repos.matches, repos.standings, bus, logger)
	matchService := services.NewMatchService(repos.tx, repos.tournaments, repos.participants, repos.matches, repos.standings, bus, logger)
	logger.Info("Services initialized")

	// Подписчики событий
	subscribers := map[string]events.HandlerFunc{
		"websocket-relay": realtime.NewRelay(wsHub).Handle,
		"leaderboard":     leaderboard.Hook(board),
	}
	if redisClient != nil {
		subscribers["redis-forwarder"] = events.NewRedisForwarder(redisClient).Handle
	}
	if cfg.ArchiveEnabled() {
		// Инициализация загрузчика файлов (Cloudflare R2)
		uploader, err := storage.NewCloudflareR2Uploader(appCtx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		subscribers["result-archiver"] = storage.NewResultArchiver(uploader, tournamentService, logger).Handle
		logger.Info("Cloudflare R2 uploader initialized")
	}
	for name, handler := range subscribers {
		if err := bus.Subscribe(appCtx, name, handler); err != nil {
			logger.Error("failed to subscribe to tournament events", slog.String("subscriber", name), slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("event subscribers started", slog.Int("count", len(subscribers)))

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, bracketService, seedingService)
	participantHandler := handlers.NewParticipantHandler(participantService)
	matchHandler := handlers.NewMatchHandler(matchService)
	leaderboardHandler := handlers.NewLeaderboardHandler(board)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{AllowedOrigins: cfg.CORSAllowedOrigins, JWTSecret: cfg.JWTSecretKey},
		tournamentHandler,
		participantHandler,
		matchHandler,
		leaderboardHandler,
		webSocketHandler,
	)
	if cfg.JWTSecretKey == "" {
		logger.Warn("JWT_SECRET_KEY is not set, administrative routes are open")
	}
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
		cancelShutdown()
	}

	// Hub останавливается только после сервера: Register блокируется на остановленном hub.
	stopApp()
	<-hubDone

	logger.Info("application exited")
	if exitCode != 0 {
		// os.Exit не выполняет defer, поэтому ресурсы закрываем явно.
		_ = bus.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if dbConn != nil {
			_ = dbConn.Close()
		}
		os.Exit(exitCode)
	}
}
