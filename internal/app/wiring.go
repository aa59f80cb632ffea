package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mihla-Tembe/disruptorr/internal/ai"
	"github.com/Mihla-Tembe/disruptorr/internal/config"
	"github.com/Mihla-Tembe/disruptorr/internal/db"
	"github.com/Mihla-Tembe/disruptorr/internal/store"
	"github.com/Mihla-Tembe/disruptorr/internal/store/memstore"
	"github.com/Mihla-Tembe/disruptorr/internal/store/redisstore"
	"github.com/Mihla-Tembe/disruptorr/internal/store/sqlstore"
	"go.uber.org/zap"
)

// OpenKV opens the storage backend named by cfg.StorageDriver. The returned
// close func releases connections.
func OpenKV(ctx context.Context, cfg config.Config, log *zap.Logger) (store.KV, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case "memory":
		log.Warn("using in-memory storage, threads are lost on restart")
		return memstore.New(), noop, nil

	case "sqlite", "mysql":
		gdb, err := db.Connect(cfg.StorageDriver, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		s := sqlstore.New(gdb)
		if err := s.Migrate(); err != nil {
			return nil, nil, fmt.Errorf("migrate kv table: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		log.Info("storage ready", zap.String("driver", cfg.StorageDriver))
		return s, sqlDB.Close, nil

	case "redis":
		s := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		log.Info("storage ready", zap.String("driver", "redis"), zap.String("addr", cfg.RedisAddr))
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported STORAGE_DRIVER=%q", cfg.StorageDriver)
	}
}

// NewRegistry registers every reply source the service can be pointed at.
func NewRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()

	relay := ai.NewRelayClient(cfg.RelayURL, cfg.RelayTimeout)
	reg.RegisterProvider("relay", relay)
	reg.RegisterProvider("helper", ai.NewHelperProvider())

	reg.Register("ollama", func(_ context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	reg.Register("openrouter", func(_ context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})
	reg.Register("openai", func(_ context.Context, model string) (ai.Provider, error) {
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("openai: OPENAI_API_KEY is not set")
		}
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenAIModel
		}
		return ai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, m), nil
	})
	return reg
}

// RelayBackend resolves the provider behind the /relay/chat endpoint.
func RelayBackend(cfg config.Config, reg *ai.Registry) (ai.Provider, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.RelayBackend), "relay") {
		return nil, errors.New("RELAY_BACKEND must not be \"relay\"")
	}
	return reg.Get(context.Background(), cfg.RelayBackend, cfg.RelayModel)
}
