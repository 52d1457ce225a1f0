package app

import (
	"os"

	"go-asistencia/internal/attendance"
	"go-asistencia/internal/auth"
	"go-asistencia/internal/incidence"
	"go-asistencia/internal/middleware"
	"go-asistencia/internal/position"
	"go-asistencia/internal/rbac"
	"go-asistencia/internal/schedule"
	"go-asistencia/internal/shared/connection"
	"go-asistencia/internal/unit"
	"go-asistencia/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

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
	logger.Info("database connection established")

	if err := migrate(gormDB); err != nil {
		return err
	}

	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	return registerModules(router, db, gormDB, rdb)
}

func migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&auth.User{},
		&unit.Unit{},
		&position.Position{},
		&worker.Worker{},
		&worker.AppointmentType{},
		&schedule.Shift{},
		&schedule.ShiftWeekday{},
		&schedule.CalendarDay{},
		&schedule.Assignment{},
		&attendance.Record{},
		&incidence.IncidenceType{},
		&incidence.Incidence{},
		&rbac.RolePermission{},
	); err != nil {
		return err
	}

	// The counter and outbox tables are touched with raw SQL only, so
	// they have no gorm model to migrate from.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS counters (
			counter_type VARCHAR(50) PRIMARY KEY,
			last_value   BIGINT NOT NULL DEFAULT 0,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id             UUID PRIMARY KEY,
			request_id     VARCHAR(64),
			aggregate_type VARCHAR(50) NOT NULL,
			aggregate_id   VARCHAR(64) NOT NULL,
			event_type     VARCHAR(100) NOT NULL,
			topic          VARCHAR(200) NOT NULL,
			payload        JSONB NOT NULL,
			status         VARCHAR(20) NOT NULL DEFAULT 'pending',
			retry_count    INT NOT NULL DEFAULT 0,
			next_retry_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_events_status_retry
			ON outbox_events (status, next_retry_at)`,
	}
	for _, stmt := range statements {
		if err := gormDB.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
