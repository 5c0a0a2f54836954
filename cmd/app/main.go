package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
	"github.com/BuzzLyutic/task-tracker/internal/command"
	"github.com/BuzzLyutic/task-tracker/internal/config"
	"github.com/BuzzLyutic/task-tracker/internal/handler"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/internal/worker"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Подключаем хранилище, схема применяется при открытии
	store, err := repo.Open(context.Background(), cfg.Store)
	if err != nil {
		logger.Fatal("Failed to open the store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.Close()
	logger.Info("Store is ready", zap.String("driver", cfg.Store.Driver))

	taskService := service.NewTaskService(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := worker.NewPool(command.NewHandler(taskService, nil), logger, cfg.Workers.Count, cfg.Workers.QueueSize)
	pool.Start(ctx)

	jwt := auth.NewJWTManager(cfg.Auth)
	if !jwt.Enabled() {
		logger.Warn("JWT_SECRET is not set, trusting the " + auth.HeaderUserID + " header")
	}

	r := handler.NewRouter(
		handler.NewTaskHandler(taskService, logger),
		handler.NewCommandHandler(pool, logger),
		jwt,
		logger,
	)

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}

	// Сначала сервер перестает принимать команды, потом останавливаем воркеров
	pool.Stop()
	cancel()
	logger.Info("Server stopped successfully!")
}
