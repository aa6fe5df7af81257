package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	uuid "github.com/vgarvardt/pgx-google-uuid/v5"

	"github.com/FACorreiaa/go-travel-assistant/app/retry"
	"github.com/FACorreiaa/go-travel-assistant/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// PingPolicy controls how long startup waits for postgres.
var PingPolicy = retry.Policy{MaxAttempts: 5, InitialBackoff: 200 * time.Millisecond, MaxDelay: 2 * time.Second}

type DatabaseConfig struct {
	ConnectionURL string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitForDB pings until the database answers or the policy is exhausted.
func WaitForDB(ctx context.Context, pgpool Pinger, policy retry.Policy, logger *slog.Logger) bool {
	err := retry.Do(ctx, policy, logger, pgpool.Ping)
	if err != nil {
		logger.ErrorContext(ctx, "Database connection failed after multiple retries", slog.Any("error", err))
		return false
	}
	logger.InfoContext(ctx, "Database connection successful")
	return true
}

// RunMigrations applies the embedded migrations.
func RunMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	sourceDriver, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source driver: %w", err)
	}

	if !strings.HasPrefix(databaseURL, "postgres://") && !strings.HasPrefix(databaseURL, "postgresql://") {
		return errors.New("invalid database URL scheme for migrate, ensure it starts with postgresql://")
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("Error closing migrate", slog.Any("source_error", srcErr), slog.Any("db_error", dbErr))
		}
	}()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case err != nil:
		logger.Warn("Could not determine migration version", slog.Any("error", err))
	case dirty:
		logger.Error("Database migration state is dirty", slog.Uint64("version", uint64(version)))
		return fmt.Errorf("database migration state is dirty at version %d", version)
	default:
		logger.Info("Database migrations applied", slog.Uint64("version", uint64(version)))
	}
	return nil
}

// NewDatabaseConfig builds the connection URL from the postgres section.
func NewDatabaseConfig(cfg *config.Config, logger *slog.Logger) (*DatabaseConfig, error) {
	if cfg == nil || cfg.Repositories.Postgres.Host == "" {
		return nil, errors.New("postgres configuration is missing or invalid")
	}
	pg := cfg.Repositories.Postgres

	sslMode := pg.SSLMODE
	if sslMode == "" {
		sslMode = "disable"
	}
	query := url.Values{}
	query.Set("sslmode", sslMode)
	query.Set("timezone", "utc")
	if pg.MAXCONWAITINGTIME > 0 {
		query.Set("connect_timeout", fmt.Sprint(pg.MAXCONWAITINGTIME))
	}

	connURL := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(pg.Username, pg.Password),
		Host:     fmt.Sprintf("%s:%s", pg.Host, pg.Port),
		Path:     pg.DB,
		RawQuery: query.Encode(),
	}

	logger.Info("Database connection URL generated", slog.String("host", connURL.Host), slog.String("database", connURL.Path))
	return &DatabaseConfig{ConnectionURL: connURL.String()}, nil
}

// Init creates the connection pool with UUID support registered on every
// connection.
func Init(ctx context.Context, connectionURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing db config: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		uuid.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed creating db pool: %w", err)
	}

	logger.Info("Database connection pool initialized")
	return pool, nil
}
