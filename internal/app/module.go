package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Mihla-Tembe/disruptorr/internal/ai"
	"github.com/Mihla-Tembe/disruptorr/internal/chat"
	"github.com/Mihla-Tembe/disruptorr/internal/config"
	"github.com/Mihla-Tembe/disruptorr/internal/httpapi"
	"github.com/Mihla-Tembe/disruptorr/internal/httpapi/handlers"
	"github.com/Mihla-Tembe/disruptorr/internal/logging"
	"github.com/Mihla-Tembe/disruptorr/internal/store"
	"github.com/Mihla-Tembe/disruptorr/internal/store/rabbitmq"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module composes the HTTP server. It expects a config.Config in the graph.
func Module() fx.Option {
	return fx.Module("disruptor",
		fx.Provide(
			provideLogger,
			provideKV,
			NewRegistry,
			provideStores,
			providePublisher,
			provideService,
			RelayBackend,
			handlers.NewHandler,
			httpapi.NewRouter,
		),
		fx.Invoke(registerServer),
	)
}

func provideLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Service: "disruptor-server",
		Env:     cfg.Env,
	})
}

func provideKV(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (store.KV, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	kv, closeFn, err := OpenKV(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(closeFn))
	return kv, nil
}

func provideStores(kv store.KV, cfg config.Config, log *zap.Logger) *chat.Stores {
	return chat.NewStores(kv, log, chat.WithUndoWindow(cfg.UndoWindow))
}

// providePublisher returns nil unless async replies are enabled.
func providePublisher(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (chat.JobPublisher, error) {
	if !cfg.AsyncReplies {
		return nil, nil
	}
	p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		return nil, err
	}
	log.Info("async replies enabled", zap.String("queue", cfg.RabbitQueue))
	lc.Append(fx.StopHook(p.Close))
	return p, nil
}

func provideService(stores *chat.Stores, reg *ai.Registry, pub chat.JobPublisher, cfg config.Config, log *zap.Logger) *chat.Service {
	return chat.NewService(stores, reg, log, chat.Options{
		ReplyProvider:  cfg.ReplyProvider,
		ReplyModel:     cfg.ReplyModel,
		HelperProvider: cfg.HelperProvider,
		Publisher:      pub,
	})
}

func registerServer(lc fx.Lifecycle, cfg config.Config, router *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.HTTPAddr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := srv.Shutdown(ctx)
			log.Info("http server stopped")
			_ = log.Sync()
			return err
		},
	})
}
