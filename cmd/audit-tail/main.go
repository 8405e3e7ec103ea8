// Command audit-tail follows the session-events topic and prints every
// audit event as a structured log line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webshop/internal/audit"
	"webshop/internal/platform/config"
	"webshop/internal/platform/kafka/consumer"
	"webshop/internal/platform/logger"
)

func main() {
	cfg := config.FromEnv()

	fromStart := flag.Bool("from-start", false, "replay the topic from the earliest retained event")
	group := flag.String("group", cfg.Kafka.GroupID, "consumer group id")
	flag.Parse()

	log := logger.New(cfg.LogLevel)
	reset := "latest"
	if *fromStart {
		reset = "earliest"
	}

	c, err := consumer.New(consumer.Config{
		Brokers:         cfg.Kafka.Brokers,
		GroupID:         *group,
		Topics:          []string{cfg.Kafka.Topic},
		AutoOffsetReset: reset,
	}, audit.NewReplay(audit.NewLogStore(log)), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "audit-tail:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("tailing session events", "topic", cfg.Kafka.Topic, "group", *group, "from", reset)
	c.Start()
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Stop(stopCtx); err != nil {
		log.Error("consumer stop failed", "error", err)
		os.Exit(1)
	}
}
