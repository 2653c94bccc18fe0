// Worker consumes session telemetry events from Kafka and archives them in audit_logs.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID and DATABASE_URL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"internship-portal/backend/internal/audit"
	auditrepo "internship-portal/backend/internal/audit/repository"
	"internship-portal/backend/internal/config"
	"internship-portal/backend/internal/db"
	"internship-portal/backend/internal/logger"
	"internship-portal/backend/internal/telemetry/consumer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, flush, err := logger.Install(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer flush()

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("worker: DATABASE_URL is required")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("worker: database", zap.Error(err))
	}
	defer conn.Close()

	sink := audit.NewLogger(auditrepo.NewPostgresRepository(conn), log)
	c := consumer.NewKafkaConsumer(brokers, cfg.TelemetryKafkaTopic, cfg.KafkaGroupID, sink, log)
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("worker: kafka reader close", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("worker: consuming",
		zap.String("topic", cfg.TelemetryKafkaTopic),
		zap.String("group", cfg.KafkaGroupID))
	if err := c.Run(ctx); err != nil {
		log.Error("worker: stopped", zap.Error(err))
		return
	}
	log.Info("worker: stopped")
}
