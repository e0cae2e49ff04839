package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/evanhutch/helpbot/internal/config"
	"github.com/evanhutch/helpbot/internal/connectors"
	"github.com/evanhutch/helpbot/internal/connectors/slack"
	"github.com/evanhutch/helpbot/internal/gateway"
	"github.com/evanhutch/helpbot/internal/health"
	"github.com/evanhutch/helpbot/internal/httpapi"
	"github.com/evanhutch/helpbot/internal/knowledge"
	"github.com/evanhutch/helpbot/internal/llm"
	"github.com/evanhutch/helpbot/internal/llm/anthropic"
	"github.com/evanhutch/helpbot/internal/llm/openai"
	"github.com/evanhutch/helpbot/internal/match"
	"github.com/evanhutch/helpbot/internal/memory"
	"github.com/evanhutch/helpbot/internal/observability"
	"github.com/evanhutch/helpbot/internal/respond"
	"github.com/evanhutch/helpbot/internal/watcher"
)

const Version = "0.3.0"

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	kb         *knowledge.Base
	memory     memory.Store
	sweeper    *memory.Sweeper
	service    *gateway.Service
	connector  connectors.Connector
	watcher    *watcher.Service
	httpServer *http.Server
	health     *health.Registry
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kb := knowledge.Load(cfg.KnowledgePath, logger.With("component", "knowledge"))

	store, err := memory.NewStore(ctx, memory.Options{
		Backend:     cfg.MemoryBackend,
		FilePath:    cfg.MemoryFilePath,
		SQLitePath:  cfg.MemorySQLitePath,
		DatabaseURL: cfg.MemoryDatabase,
		Limit:       cfg.MemoryLimit,
	}, logger.With("component", "memory"))
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}

	sweeper, err := memory.NewSweeper(store, cfg.RetentionCron, cfg.RetentionMaxAge(), logger.With("component", "retention"))
	if err != nil {
		store.Close()
		return nil, err
	}

	metrics := observability.NewMetrics("helpbot")
	registry := health.NewRegistry()

	service := gateway.New(
		gateway.Config{
			BotName:        cfg.BotName,
			Threshold:      cfg.MatchThreshold,
			HistorySize:    cfg.HistoryCommandLen,
			LLMProvider:    cfg.LLMProvider,
			LLMMaxTokens:   cfg.LLMMaxTokens,
			LLMTemperature: cfg.LLMTemperature,
			LLMTimeout:     cfg.LLMTimeout(),
		},
		kb,
		match.ForProfile(cfg.Profile),
		match.Detector{Strict: cfg.StrictDetection},
		respond.NewComposer(cfg.Profile, respond.NewPicker()),
		newLLMClient(cfg, logger),
		store,
		metrics,
		logger.With("component", "gateway"),
	)

	connector := slack.New(slack.Config{
		BotToken:     cfg.SlackBotToken,
		AppToken:     cfg.SlackAppToken,
		APIBase:      cfg.SlackAPIBase,
		AmbientDelay: cfg.AmbientDelay(),
	}, service, registry, metrics, logger.With("component", "slack"))

	kbWatcher, err := watcher.New(cfg.KnowledgePath, logger.With("component", "watcher"), func(reloadCtx context.Context) {
		kb.Reload()
		registry.Set("knowledge", health.StateHealthy, fmt.Sprintf("%d entries loaded", kb.Len()))
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	registry.Set("knowledge", health.StateHealthy, fmt.Sprintf("%d entries loaded", kb.Len()))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
		Handler: httpapi.NewRouter(httpapi.Dependencies{
			BotName: cfg.BotName,
			Version: Version,
			Service: service,
			Memory:  store,
			Health:  registry,
			Logger:  logger.With("component", "api"),
		}),
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		kb:         kb,
		memory:     store,
		sweeper:    sweeper,
		service:    service,
		connector:  connector,
		watcher:    kbWatcher,
		httpServer: httpServer,
		health:     registry,
	}, nil
}

func (r *Runtime) Close() error {
	if r.memory == nil {
		return nil
	}
	return r.memory.Close()
}

// Gateway exposes the message pipeline for the one-shot CLI commands.
func (r *Runtime) Gateway() *gateway.Service {
	return r.service
}

func (r *Runtime) Memory() memory.Store {
	return r.memory
}

func newLLMClient(cfg config.Config, logger *slog.Logger) llm.Client {
	if cfg.LLMAPIKey == "" {
		logger.Info("generative fallback disabled, no API key configured")
		return nil
	}
	switch cfg.LLMProvider {
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout(),
		}, logger.With("component", "llm"))
	default:
		return openai.New(openai.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout(),
		}, logger.With("component", "llm"))
	}
}
