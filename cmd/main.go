package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-liveops/config"
	"github.com/Dosada05/tournament-liveops/db"
	"github.com/Dosada05/tournament-liveops/engine"
	"github.com/Dosada05/tournament-liveops/handlers"
	"github.com/Dosada05/tournament-liveops/repositories"
	api "github.com/Dosada05/tournament-liveops/routes"
	"github.com/Dosada05/tournament-liveops/services"
	"github.com/Dosada05/tournament-liveops/solver"
	"github.com/Dosada05/tournament-liveops/storage"
	_ "github.com/lib/pq"
)

const suggestionInterval = 15 * time.Second // как часто пересчитываются подсказки по кортам

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Int("tournament_id", cfg.TournamentID),
	)

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
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

	// Инициализация WebSocket Hub
	wsHub := engine.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	stateRepo := repositories.NewPostgresStateRepository(dbConn)
	operatorRepo := repositories.NewPostgresOperatorRepository(dbConn)
	logger.Info("Repositories initialized")

	// Клиент внешнего солвера расписания
	solverClient := solver.NewHTTPClient(cfg.SolverURL, cfg.SolverServiceToken, time.Duration(cfg.SolverTimeLimitSeconds)*time.Second)
	logger.Info("Solver client initialized", slog.String("url", cfg.SolverURL))

	// Исходящий синк состояния (опционально)
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	syncService := services.NewSyncService(cfg.SyncTargetURL, cfg.SyncServiceToken)
	go syncService.Run(rootCtx)
	if cfg.SyncTargetURL != "" {
		logger.Info("Sync worker started", slog.String("target", cfg.SyncTargetURL))
	}

	// Инициализация сервисов
	liveOpsService := services.NewLiveOpsService(
		cfg.TournamentID,
		tournamentRepo,
		stateRepo,
		solverClient,
		wsHub,
		syncService,
	)
	if err := liveOpsService.Bootstrap(rootCtx); err != nil {
		logger.Error("failed to bootstrap tournament", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("tournament bootstrapped", slog.Int("tournament_id", cfg.TournamentID))

	boardService := services.NewBoardService(liveOpsService, wsHub)
	authService := services.NewAuthService(operatorRepo)

	// Публикация публичного табло в Cloudflare R2 (опционально)
	var exportService services.ExportService
	if cfg.R2Enabled() {
		cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
		exportService = services.NewExportService(boardService, cloudflareUploader)
		logger.Info("Cloudflare R2 uploader initialized")
	}
	logger.Info("Services initialized")

	// Периодический пересчёт подсказок по свободным кортам
	go func() {
		ticker := time.NewTicker(suggestionInterval)
		defer ticker.Stop()
		logger.Info("Court suggestion ticker started", slog.Duration("interval", suggestionInterval))
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				boardService.PushSuggestions()
			}
		}
	}()

	// Инициализация обработчиков HTTP
	router := api.InitRoutes(api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		LiveOps:   handlers.NewLiveOpsHandler(liveOpsService),
		Board:     handlers.NewBoardHandler(boardService, exportService),
		WebSocket: handlers.NewWebSocketHandler(wsHub),
	}, cfg.JWTSecretKey)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
