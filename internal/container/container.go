package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-travel-assistant/app/db"
	"github.com/FACorreiaa/go-travel-assistant/app/retry"
	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/chat"
	generativeAI "github.com/FACorreiaa/go-travel-assistant/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/geolocation"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/nearby"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/searchlog"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	Sessions         *chat.Store
	ChatHandler      *chat.Handler
	SearchLogHandler *searchlog.Handler
}

// unavailableGenerator answers every request with an error so sessions
// reply with their fallback when no model is configured.
type unavailableGenerator struct{ err error }

func (g unavailableGenerator) Generate(context.Context, types.GenerationRequest) (string, error) {
	return "", g.err
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	var repo searchlog.Repository
	if cfg.Repositories.Postgres.Enabled {
		pool, err := c.initDatabase(ctx)
		if err != nil {
			return nil, err
		}
		c.Pool = pool
		repo = searchlog.NewRepository(pool, logger)
	} else {
		logger.Info("Postgres disabled, nearby searches will not be recorded")
	}
	searchLogService := searchlog.NewService(repo, logger)

	overpassPolicy := retry.Policy{
		MaxAttempts:    cfg.Overpass.MaxAttempts,
		InitialBackoff: cfg.Overpass.InitialBackoff,
	}
	overpassClient := nearby.NewOverpassClient(cfg.Overpass.Endpoint, cfg.Overpass.Timeout, overpassPolicy, logger)
	resolver := nearby.NewResolver(overpassClient, searchLogService, nearby.Options{
		DefaultRadius: cfg.Assistant.DefaultRadius,
		MaxResults:    cfg.Assistant.MaxResults,
		CacheTTL:      cfg.Overpass.CacheTTL,
	}, logger)

	var generator chat.Generator
	aiClient, err := generativeAI.NewAIClient(ctx, os.Getenv(cfg.Gemini.APIKeyEnv), cfg.Gemini.Model, "", logger)
	switch {
	case errors.Is(err, types.ErrUnsupportedCapability):
		logger.Warn("Gemini API key not set, chat replies will use the fallback message",
			slog.String("env", cfg.Gemini.APIKeyEnv))
		generator = unavailableGenerator{err: err}
	case err != nil:
		c.Close()
		return nil, fmt.Errorf("failed to create generative AI client: %w", err)
	default:
		generator = aiClient
	}

	ipLocator := geolocation.NewIPLocator(cfg.Geolocation.Endpoint, retry.Policy{MaxAttempts: 2}, logger)
	locatorOpts := geolocation.Options{Timeout: cfg.Geolocation.Timeout, MaximumAge: cfg.Geolocation.MaximumAge}
	languages := chat.NewLanguageTable(cfg.Assistant.Languages, cfg.Assistant.Instruction,
		cfg.Assistant.UnknownName, cfg.Assistant.DefaultLang)
	settings := chat.Settings{
		Persona:       cfg.Assistant.Persona,
		MaxTranscript: cfg.Assistant.MaxTranscript,
		MaxTokens:     cfg.Assistant.MaxTokens,
		Temperature:   cfg.Assistant.Temperature,
		SearchRadius:  cfg.Assistant.DefaultRadius,
	}

	c.Sessions = chat.NewStore(cfg.Assistant.SessionTTL, func(id string) *chat.Session {
		locator := geolocation.NewCachedLocator(ipLocator, locatorOpts)
		return chat.NewSession(id, generator, resolver, locator, languages, settings, logger)
	})
	c.ChatHandler = chat.NewHandler(c.Sessions, resolver, cfg.Assistant.DefaultRadius, logger)
	c.SearchLogHandler = searchlog.NewHandler(searchLogService, logger)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	dbConfig, err := database.NewDatabaseConfig(c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	pool, err := database.Init(ctx, dbConfig.ConnectionURL, c.Logger)
	if err != nil {
		return nil, err
	}
	if !database.WaitForDB(ctx, pool, database.PingPolicy, c.Logger) {
		pool.Close()
		return nil, errors.New("database not ready")
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, c.Logger); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
