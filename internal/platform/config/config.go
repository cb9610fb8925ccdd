// Pacote config centraliza o carregamento das variáveis de ambiente usadas pelos binários.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrega todos os parâmetros necessários para API, worker e importador.
type Config struct {
	HTTPAddress string

	DBDriver   string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FilaKeyPrefix     string
	ContadorKeyPrefix string

	RateLimitEnabled       bool
	RateLimitMaxActions    int
	RateLimitWindowSeconds int
	RateLimitKeyPrefix     string

	AutoMigrate bool

	JWTSecret string
	JWTIssuer string

	WorkerMetricsAddress string
	ResultsRefreshCron   string

	LogLevel string
	LogFile  string
}

func Load() (Config, error) {
	// .env é opcional; quando existe só preenche o que ainda não está no ambiente.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: .env invalido: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		HTTPAddress:            v.GetString("HTTP_ADDRESS"),
		DBDriver:               strings.ToLower(v.GetString("DB_DRIVER")),
		SQLitePath:             v.GetString("SQLITE_PATH"),
		PostgresHost:           v.GetString("POSTGRES_HOST"),
		PostgresPort:           v.GetString("POSTGRES_PORT"),
		PostgresUser:           v.GetString("POSTGRES_USER"),
		PostgresPassword:       v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:             v.GetString("POSTGRES_DB"),
		PostgresSSLMode:        v.GetString("POSTGRES_SSLMODE"),
		RedisAddr:              v.GetString("REDIS_ADDR"),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		FilaKeyPrefix:          v.GetString("REDIS_QUEUE_PREFIX"),
		ContadorKeyPrefix:      v.GetString("REDIS_COUNTER_PREFIX"),
		RateLimitEnabled:       v.GetBool("ANTIFRAUDE_RATE_LIMIT_ENABLED"),
		RateLimitMaxActions:    v.GetInt("ANTIFRAUDE_RATE_LIMIT_MAX"),
		RateLimitWindowSeconds: v.GetInt("ANTIFRAUDE_RATE_LIMIT_WINDOW"),
		RateLimitKeyPrefix:     v.GetString("ANTIFRAUDE_RATE_LIMIT_PREFIX"),
		AutoMigrate:            v.GetBool("DB_AUTO_MIGRATE"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		JWTIssuer:              v.GetString("JWT_ISSUER"),
		WorkerMetricsAddress:   v.GetString("WORKER_METRICS_ADDRESS"),
		ResultsRefreshCron:     v.GetString("RESULTS_REFRESH_CRON"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		LogFile:                v.GetString("LOG_FILE"),
	}

	redisDB, err := parseInt(v, "REDIS_DB")
	if err != nil {
		return Config{}, err
	}
	cfg.RedisDB = redisDB

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// setDefaults prioriza execução local; variáveis permitem sobrescrever em Docker/K8s.
func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SQLITE_PATH", "evoto.db")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "evoto")
	v.SetDefault("POSTGRES_PASSWORD", "evoto")
	v.SetDefault("POSTGRES_DB", "evoto")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", "0")
	v.SetDefault("REDIS_QUEUE_PREFIX", "fila:cedulas")
	v.SetDefault("REDIS_COUNTER_PREFIX", "contador")
	v.SetDefault("ANTIFRAUDE_RATE_LIMIT_ENABLED", true)
	v.SetDefault("ANTIFRAUDE_RATE_LIMIT_MAX", 5)
	v.SetDefault("ANTIFRAUDE_RATE_LIMIT_WINDOW", 60)
	v.SetDefault("ANTIFRAUDE_RATE_LIMIT_PREFIX", "ratelimit")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "evoto")
	v.SetDefault("WORKER_METRICS_ADDRESS", ":9090")
	v.SetDefault("RESULTS_REFRESH_CRON", "@every 5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
}

func parseInt(v *viper.Viper, key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return 0, fmt.Errorf("config: %s invalido: %w", key, err)
	}
	return n, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: DB_DRIVER desconhecido %q", c.DBDriver)
	}
	return nil
}

// RequireJWT é exigido apenas pelos binários que autenticam requisições.
func (c Config) RequireJWT() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET obrigatorio")
	}
	return nil
}

func (c Config) PostgresDSN() string {
	// Mantemos o formato DSN compatível com GORM e ferramentas de migração.
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

// DBTarget devolve o alvo de conexão do driver escolhido: DSN no postgres, arquivo no sqlite.
func (c Config) DBTarget() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.PostgresDSN()
}
