package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nishkarsh/go-shop-api/internal/config"
	kafkax "github.com/nishkarsh/go-shop-api/internal/kafka"
	"github.com/nishkarsh/go-shop-api/internal/logx"
	"github.com/nishkarsh/go-shop-api/internal/notify"
	"github.com/nishkarsh/go-shop-api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logx.New(logx.Options{Service: cfg.ServiceName + "-notifier", Env: cfg.Env, Level: cfg.LogLevel})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	worker := &notify.Worker{
		Redis: rdb,
		Mailer: &notify.SMTPMailer{
			Addr:     cfg.SMTPAddr,
			From:     cfg.SMTPFrom,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
	}

	group := getenv("NOTIFIER_GROUP", "shop-notifier")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, notify.TopicOrderEvents, workers)

	go func() {
		slog.Info("notifier consumer started",
			"group", group, "topic", notify.TopicOrderEvents, "workers", workers)
		if err := cons.Start(ctx, worker.HandleOrderEvent); err != nil {
			slog.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down notifier")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
