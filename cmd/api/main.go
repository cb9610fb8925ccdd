// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/evoto/internal/app/hierarchy"
	"github.com/marcelojr/evoto/internal/app/httpapi"
	"github.com/marcelojr/evoto/internal/app/registry"
	"github.com/marcelojr/evoto/internal/app/results"
	"github.com/marcelojr/evoto/internal/app/tabulation"
	"github.com/marcelojr/evoto/internal/app/voting"
	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/antifraude"
	"github.com/marcelojr/evoto/internal/platform/auth"
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
	if err := cfg.RequireJWT(); err != nil {
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

	// Redis carrega fila, contadores e antifraude; votar continua funcionando se a fila cair.
	redisClient, err := redisstorage.NewClient(ctx, redisstorage.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	geoRepo := postgresstorage.NewGeoNodeRepository(db)
	electionRepo := postgresstorage.NewElectionRepository(db)
	voterRepo := postgresstorage.NewVoterRepository(db)
	candidateRepo := postgresstorage.NewCandidateRepository(db)
	ballotRepo := postgresstorage.NewBallotRepository(db)
	resultRepo := postgresstorage.NewResultRepository(db)

	clockSystem := clock.NewSystemClock()
	idGen := ids.NewGenerator()

	// A árvore é carregada uma vez; recargas passam por /admin/hierarchy/reload.
	tree := hierarchy.NewService(geoRepo)
	if err := tree.Reload(ctx); err != nil {
		logger.Fatal("falha ao carregar hierarquia", "err", err)
	}

	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		antifraudeSvc = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, window, cfg.RateLimitKeyPrefix)
	}

	votingSvc := voting.NewService(voting.Deps{
		Elections:  electionRepo,
		Voters:     voterRepo,
		Candidates: candidateRepo,
		Ballots:    ballotRepo,
		Contador:   redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix),
		Fila:       redisstorage.NewFila(redisClient, cfg.FilaKeyPrefix),
		Antifraude: antifraudeSvc,
		Tree:       tree,
		Clock:      clockSystem,
		IDs:        idGen,
	})

	api := httpapi.New(httpapi.Services{
		Voting:     votingSvc,
		Tabulation: tabulation.NewService(electionRepo, ballotRepo, resultRepo, clockSystem, idGen),
		Results:    results.NewService(resultRepo, clockSystem),
		Registry:   registry.NewService(electionRepo, voterRepo, candidateRepo, tree, idGen),
		Hierarchy:  tree,
	}, auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, clockSystem), logger.L())

	checker := health.NewChecker(sqlDB, redisClient).Add("hierarchy", tree.Ready)

	mux := http.NewServeMux()
	api.Register(mux)
	mux.HandleFunc("GET /healthz", checker.LiveHandler())
	mux.HandleFunc("GET /readyz", checker.ReadyHandler())
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           api.WithRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("erro ao encerrar servidor", "err", err)
		}
	}()

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("erro no servidor", "err", err)
	}
	logger.Info("api finalizada")
}
