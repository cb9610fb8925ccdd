// Pacote postgres implementa a camada de persistência relacional via GORM.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	return open(ctx, postgres.Open(dsn), 25)
}

// OpenSQLite atende o modo de desenvolvimento local (DB_DRIVER=sqlite).
// Uma única conexão evita "database is locked" nas escritas concorrentes.
func OpenSQLite(ctx context.Context, path string) (*gorm.DB, error) {
	return open(ctx, sqlite.Open(path+"?_busy_timeout=5000"), 1)
}

// OpenDriver escolhe o dialeto pelo nome configurado em DB_DRIVER; para sqlite, target é o caminho do arquivo.
func OpenDriver(ctx context.Context, driver, target string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return Open(ctx, target)
	case "sqlite":
		return OpenSQLite(ctx, target)
	default:
		return nil, fmt.Errorf("gorm: driver desconhecido %q", driver)
	}
}

func open(ctx context.Context, dialector gorm.Dialector, maxConns int) (*gorm.DB, error) {
	// TranslateError converte violações de unicidade em gorm.ErrDuplicatedKey nos dois drivers.
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm: abrir conexao %s: %w", dialector.Name(), err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm: obter sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(60 * time.Minute)

	// Ping inicial garante que a instância está acessível antes de devolver a conexão.
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctxPing); err != nil {
		return nil, fmt.Errorf("gorm: ping falhou: %w", err)
	}

	return gormDB, nil
}
