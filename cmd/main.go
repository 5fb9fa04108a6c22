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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/rodrigo-greising/game-theory-sub000/config"
	"github.com/rodrigo-greising/game-theory-sub000/db"
	"github.com/rodrigo-greising/game-theory-sub000/games"
	"github.com/rodrigo-greising/game-theory-sub000/handlers"
	"github.com/rodrigo-greising/game-theory-sub000/realtime"
	api "github.com/rodrigo-greising/game-theory-sub000/routes"
	"github.com/rodrigo-greising/game-theory-sub000/services"
	"github.com/rodrigo-greising/game-theory-sub000/storage"
	"github.com/rodrigo-greising/game-theory-sub000/store"
)

const sweeperInterval = 10 * time.Minute // How often the stale session sweeper runs

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

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

	// Хранилище документов сессий поверх Postgres
	sessionStore := store.NewPostgresSessionStore(dbConn)
	if err := sessionStore.EnsureSchema(context.Background()); err != nil {
		logger.Error("failed to ensure session schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("session store ready")

	// Архивирование завершенных сессий в объектное хранилище (опционально)
	var archiver services.Archiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
		archiver = services.NewArchiveService(uploader, logger)
		logger.Info("session archiver initialized")
	} else {
		logger.Info("session archiving disabled, R2 credentials not configured")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Реестр игровых вариантов
	registry := games.NewRegistry()
	logger.Info("game registry initialized", slog.Int("variants", len(registry.List())))

	// Инициализация сервисов
	sessionService := services.NewSessionService(sessionStore, registry, wsHub, logger)
	tournamentService := services.NewTournamentService(sessionStore, registry, wsHub, logger)
	roundService := services.NewRoundService(sessionStore, registry, tournamentService, wsHub, archiver, logger)
	logger.Info("services initialized")

	// Запуск уборщика устаревших сессий
	go func() {
		ticker := time.NewTicker(sweeperInterval)
		defer ticker.Stop()
		logger.Info("stale session sweeper started",
			slog.Duration("interval", sweeperInterval),
			slog.Duration("retention", cfg.SessionRetention))

		for range ticker.C {
			removed, err := sessionService.DeleteStale(context.Background(), cfg.SessionRetention)
			if err != nil {
				logger.Error("sweeper run failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				logger.Info("stale sessions removed", slog.Int("count", removed))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	sessionHandler := handlers.NewSessionHandler(sessionService, cfg.JWTSecretKey)
	matchHandler := handlers.NewMatchHandler(roundService, tournamentService, sessionService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, sessionService, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, cfg.JWTSecretKey, sessionHandler, matchHandler, webSocketHandler)
	logger.Info("routes configured")

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
		}
		logger.Info("server stopped gracefully")
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
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
