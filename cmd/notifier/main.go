package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ariefcatur/go-market-ledger.git/internal/config"
	kafkax "github.com/ariefcatur/go-market-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/notify"
	"github.com/ariefcatur/go-market-ledger.git/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName+"-notifier").Logger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-notifier",
		FeedLen:     int64(cfg.FeedLen),
		Log:         log,
	}

	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), 4)
	topics := []string{market.TopicOrderFulfilled, market.TopicOrderRejected, market.TopicPaymentApplied}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, topics, workers, log)

	go func() {
		log.Info().Str("group", cfg.NotifierGroup).Strs("topics", topics).Int("workers", workers).
			Msg("notifier consumer started")
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down notifier...")
	cancel()
}

func mustAtoi(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}
