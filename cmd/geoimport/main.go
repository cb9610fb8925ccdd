// Importador da hierarquia geográfica: lê um arquivo YAML, valida a árvore junto com os
// nós já gravados e grava os nós do arquivo.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcelojr/evoto/internal/app/hierarchy"
	"github.com/marcelojr/evoto/internal/platform/config"
	"github.com/marcelojr/evoto/internal/platform/logger"
	"github.com/marcelojr/evoto/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/evoto/internal/platform/storage/postgres"
)

var (
	arquivo = flag.String("file", "hierarchy.yaml", "arquivo YAML com a hierarquia")
	dryRun  = flag.Bool("dry-run", false, "apenas valida o arquivo contra o banco, sem gravar")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logCloser := logger.Configure(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()

	f, err := os.Open(*arquivo)
	if err != nil {
		logger.Fatal("falha ao abrir arquivo", "err", err, "file", *arquivo)
	}
	nodes, err := hierarchy.ParseYAML(f)
	f.Close()
	if err != nil {
		logger.Fatal("arquivo de hierarquia invalido", "err", err, "file", *arquivo)
	}

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

	repo := postgresstorage.NewGeoNodeRepository(db)
	gravados, err := repo.ListAll(ctx)
	if err != nil {
		logger.Fatal("falha ao ler hierarquia gravada", "err", err)
	}
	completa, err := hierarchy.MergeForImport(gravados, nodes)
	if err != nil {
		logger.Fatal("hierarquia invalida apos importacao", "err", err, "file", *arquivo)
	}
	logger.Info("hierarquia validada", "nos_arquivo", len(nodes), "nos_total", len(completa), "file", *arquivo)
	if *dryRun {
		return
	}

	if err := repo.Upsert(ctx, nodes); err != nil {
		logger.Fatal("falha ao gravar hierarquia", "err", err)
	}
	logger.Info("hierarquia importada", "nos", len(nodes))
}
