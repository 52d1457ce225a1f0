package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-asistencia/internal/attendance"
	"go-asistencia/internal/events"
	"go-asistencia/internal/messaging/kafka/consumer"
	"go-asistencia/internal/schedule"
	"go-asistencia/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer turns authorized incidences into excused attendance
// records by consuming the incidence authorized topic.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	attendanceRepo := attendance.NewRepository(gormDB)
	scheduleRepo := schedule.NewRepository(gormDB)
	resolver := schedule.NewResolver(scheduleRepo)
	evaluator := attendance.NewEvaluator(resolver)
	attendanceService := attendance.NewService(sqlDB, attendanceRepo, evaluator)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.IncidenceAuthorizedTopic,
		GroupID:        "go-asistencia-attendance",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeIncidenceAuthorized(ctx, reader, attendanceService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
