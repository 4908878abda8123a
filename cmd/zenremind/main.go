package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zenremind/internal/alarm"
	"zenremind/internal/config"
	"zenremind/internal/httpserver"
	"zenremind/internal/logger"
	"zenremind/internal/notify"
	"zenremind/internal/repository"
	"zenremind/internal/scheduler"
	"zenremind/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logClient := logger.New(cfg.LogLevel, cfg.LogPretty)
	defer func() { _ = logClient.Sync() }()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logClient.Fatal("open db", logger.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	kv := repository.NewKVRepository(db)

	registry := alarm.NewRegistry(logClient)
	defer registry.Stop()

	alarmSync := service.NewAlarmSync(registry, logClient, time.Now)
	store := service.NewStore(kv, alarmSync, logClient, time.Now)

	var notifier notify.Notifier
	if cfg.TelegramToken != "" {
		notifier, err = notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, logClient)
		if err != nil {
			logClient.Fatal("telegram notifier", logger.Error(err))
		}
	} else {
		logClient.Warn("no telegram credentials, notifications are log-only")
		notifier = notify.NewLogNotifier(logClient)
	}

	dispatcher := service.NewDispatcher(store, notifier, logClient)
	registry.OnAlarm(func(name string) {
		fireCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		dispatcher.HandleAlarm(fireCtx, name)
	})

	// Alarm registrations do not survive restarts; reconcile against the
	// store before accepting traffic.
	resync := func(ctx context.Context) {
		reminders, err := store.List(ctx)
		if err != nil {
			logClient.Error("resync: load reminders", logger.Error(err))
			return
		}
		alarmSync.Resync(reminders)
	}
	resync(ctx)

	jobs := scheduler.New(time.Local)
	if _, err := jobs.ScheduleInterval(cfg.ResyncInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resync(jobCtx)
	}); err != nil {
		logClient.Fatal("schedule resync", logger.Error(err))
	}
	jobs.Start()
	defer jobs.Stop()

	server := httpserver.New(cfg.HTTPAddr, store, logClient)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logClient.Fatal("http server", logger.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logClient.Error("shutdown", logger.Error(err))
	}
	logClient.Info("shutdown complete")
}
