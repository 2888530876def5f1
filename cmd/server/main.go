package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/communityhq/coin-ledger/internal/config"
	"github.com/communityhq/coin-ledger/internal/events/kafka"
	"github.com/communityhq/coin-ledger/internal/httpapi"
	"github.com/communityhq/coin-ledger/internal/interfaces"
	"github.com/communityhq/coin-ledger/internal/ledger"
	"github.com/communityhq/coin-ledger/internal/penalty"
	"github.com/communityhq/coin-ledger/internal/ranking"
	"github.com/communityhq/coin-ledger/internal/storage/memory"
	"github.com/communityhq/coin-ledger/internal/storage/postgres"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()

	// Without DATABASE_URL the server falls back to the in-memory
	// store, which is enough for local development.
	var store interfaces.LedgerStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal("ping database", zap.Error(err))
		}

		pg := postgres.NewPostgresLedgerStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal("ensure schema", zap.Error(err))
		}
		store = pg
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
		store = memory.NewMemoryLedgerStore()
	}

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
	}

	coordinator := ledger.NewLedger(store, publisher, log)
	rankingIndex := ranking.New(store)
	penaltyEngine := penalty.NewEngine(coordinator, penalty.NopRecorder{})

	router := httpapi.NewRouter(coordinator, rankingIndex, penaltyEngine, log)

	log.Info("starting server", zap.String("addr", cfg.HTTPAddr))
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
