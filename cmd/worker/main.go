package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Mihla-Tembe/disruptorr/internal/app"
	"github.com/Mihla-Tembe/disruptorr/internal/chat"
	"github.com/Mihla-Tembe/disruptorr/internal/config"
	"github.com/Mihla-Tembe/disruptorr/internal/logging"
	"github.com/Mihla-Tembe/disruptorr/internal/store/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Service: "disruptor-worker",
		Env:     cfg.Env,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("worker failed", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := app.OpenKV(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()

	stores := chat.NewStores(kv, log, chat.WithUndoWindow(cfg.UndoWindow))
	svc := chat.NewService(stores, app.NewRegistry(cfg), log, chat.Options{
		ReplyProvider:  cfg.ReplyProvider,
		ReplyModel:     cfg.ReplyModel,
		HelperProvider: cfg.HelperProvider,
	})

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		return fmt.Errorf("rabbit dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbit channel: %w", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	concurrency := cfg.WorkerConcurrency
	if err := ch.Qos(concurrency, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	log.Info("worker started", zap.String("queue", cfg.RabbitQueue), zap.Int("concurrency", concurrency))

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			wlog := log.With(zap.Int("worker", workerID))
			for d := range jobs {
				handleDelivery(ctx, svc, wlog, d)
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return nil

		case d, ok := <-msgs:
			if !ok {
				close(jobs)
				wg.Wait()
				return errors.New("delivery channel closed")
			}
			jobs <- d
		}
	}
}

// handleDelivery acks on success. Failures are nacked without requeue so the
// broker dead-letters them.
func handleDelivery(ctx context.Context, svc *chat.Service, log *zap.Logger, d amqp.Delivery) {
	start := time.Now()
	job, err := svc.HandleJob(ctx, d.Body)
	if err != nil {
		log.Warn("reply job failed",
			zap.String("job_id", job.JobID),
			zap.String("thread_id", job.ThreadID),
			zap.Duration("cost", time.Since(start)),
			zap.Error(err),
		)
		_ = d.Nack(false, false)
		return
	}

	if err := d.Ack(false); err != nil {
		log.Warn("ack failed", zap.String("job_id", job.JobID), zap.Error(err))
	}
	if cost := time.Since(start); cost > 2*time.Second {
		log.Info("slow reply job", zap.String("job_id", job.JobID), zap.Duration("cost", cost))
	}
}
