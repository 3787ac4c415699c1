package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todo-app/internal/bot"
	"todo-app/internal/config"
	"todo-app/internal/logger"
	"todo-app/internal/manager"
	"todo-app/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		logger.Error(ctx, err, "Бот остановлен с ошибкой")
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetFormatter(cfg.Log.Format)
	logger.Info(ctx, "Запуск Telegram-бота...")

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("не задан токен бота (telegram.token или TELEGRAM_TOKEN)")
	}

	st, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}
	defer st.Close()

	taskManager, err := manager.NewTaskManagerWithStorage(ctx, st)
	if err != nil {
		return err
	}

	b, err := bot.New(cfg.Telegram.Token, taskManager)
	if err != nil {
		return err
	}
	return b.Start(ctx)
}
