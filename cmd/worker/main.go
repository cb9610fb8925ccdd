// Worker assíncrono: consome eventos de cédula da fila, mantém os contadores de comparecimento
// e reapura periodicamente as eleições encerradas.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/marcelojr/evoto/internal/app/tabulation"
	"github.com/marcelojr/evoto/internal/app/worker"
	"github.com/marcelojr/evoto/internal/platform/clock"
	"github.com/marcelojr/evoto/internal/platform/config"
	"github.com/marcelojr/evoto/internal/platform/health"
	"github.com/marcelojr/evoto/internal/platform/ids"
	"github.com/marcelojr/evoto/internal/platform/logger"
	"github.com/marcelojr/evoto/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/evoto/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/evoto/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logCloser := logger.Configure(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()

	db, err := postgresstorage.OpenDriver(ctx, cfg.DBDriver, cfg.DBTarget())
	if err != nil {
		logger.Fatal("falha ao conectar no banco", "err", err, "driver", cfg.DBDriver)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	redisClient, err := redisstorage.NewClient(ctx, redisstorage.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
	fila := redisstorage.NewFila(redisClient, cfg.FilaKeyPrefix)
	clockSystem := clock.NewSystemClock()
	checker := health.NewChecker(sqlDB, redisClient)

	if cfg.WorkerMetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthz", checker.LiveHandler())
			mux.HandleFunc("/readyz", checker.ReadyHandler())
			srv := &http.Server{Addr: cfg.WorkerMetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			logger.Info("worker metrics ouvindo", "addr", cfg.WorkerMetricsAddress)
			if err := srv.ListenAndServe(); err != nil {
				logger.Error("erro no servidor de metrics do worker", "err", err)
			}
		}()
	}

	electionRepo := postgresstorage.NewElectionRepository(db)
	resultRepo := postgresstorage.NewResultRepository(db)
	tabulationSvc := tabulation.NewService(electionRepo, postgresstorage.NewBallotRepository(db), resultRepo, clockSystem, ids.NewGenerator())

	if cfg.ResultsRefreshCron != "" {
		scheduler := cron.New()
		refresher := worker.NewResultsRefresher(electionRepo, resultRepo, tabulationSvc)
		if _, err := refresher.Schedule(ctx, scheduler, cfg.ResultsRefreshCron); err != nil {
			logger.Fatal("falha ao agendar reapuracao", "err", err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logger.Info("reapuracao agendada", "cron", cfg.ResultsRefreshCron)
	}

	processor := worker.NewBallotProcessor(contador, clockSystem)

	logger.Info("worker iniciado, aguardando cedulas")
	// Erro devolvido pelo handler desvia o evento para a lista de falhas da fila.
	err = fila.Consumir(ctx, processor.Process)

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("worker finalizado com erro", "err", err)
	}

	logger.Info("worker finalizado")
}
