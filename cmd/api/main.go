package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-market-ledger.git/internal/config"
	"github.com/ariefcatur/go-market-ledger.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-market-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/pipeline"
	"github.com/ariefcatur/go-market-ledger.git/internal/postgres"
	"github.com/ariefcatur/go-market-ledger.git/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 8)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pFulfil := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderFulfilled, 1024, log)
	pReject := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderRejected, 1024, log)
	pPaid := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicPaymentApplied, 1024, log)
	pFulfil.Start(ctx)
	pReject.Start(ctx)
	pPaid.Start(ctx)

	// Order pipeline: satu worker, FIFO
	queue := pipeline.New(&market.FulfillmentRepo{DB: db}, cfg.QueueDepth, cfg.SubmitTimeout, log)
	queue.Start(ctx)

	// Handler
	router := httpx.NewRouter()
	mh := &httpx.MarketHandler{
		Pipeline:  queue,
		Ledger:    &market.LedgerRepo{DB: db},
		Catalog:   &market.CatalogRepo{DB: db},
		Redis:     rdb,
		Service:   cfg.ServiceName,
		FeedLen:   int64(cfg.FeedLen),
		PubFulfil: pFulfil,
		PubReject: pReject,
		PubPaid:   pPaid,
	}
	mh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	pFulfil.Close() // tutup inbox -> flush & close writer
	pReject.Close()
	pPaid.Close()
	cancel() // stop producer loop & pipeline worker
	pFulfil.WaitClosed()
	pReject.WaitClosed()
	pPaid.WaitClosed()
	queue.WaitClosed()
}
