package app

import (
	"context"
	"database/sql"
	"path/filepath"

	"go-asistencia/internal/attendance"
	"go-asistencia/internal/auth"
	"go-asistencia/internal/incidence"
	"go-asistencia/internal/messaging/kafka"
	"go-asistencia/internal/position"
	"go-asistencia/internal/rbac"
	"go-asistencia/internal/rbac/infra"
	"go-asistencia/internal/report"
	"go-asistencia/internal/schedule"
	"go-asistencia/internal/shared/counter"
	"go-asistencia/internal/unit"
	"go-asistencia/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	incidenceRepo := incidence.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	positionRepo := position.NewRepository(gormDB)
	reportRepo := report.NewRepository(gormDB)
	scheduleRepo := schedule.NewRepository(gormDB)
	unitRepo := unit.NewRepository(gormDB)
	workerRepo := worker.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	authService := auth.NewService(authRepo, workerRepo)
	scheduleService := schedule.NewService(db, scheduleRepo)
	resolver := schedule.NewResolver(scheduleRepo)
	evaluator := attendance.NewEvaluator(resolver)
	attendanceService := attendance.NewServiceWithOutbox(db, attendanceRepo, evaluator, outboxRepo)
	incidenceService := incidence.NewServiceWithOutbox(db, incidenceRepo, outboxRepo)
	positionService := position.NewService(db, positionRepo, rdb)
	reportService := report.NewService(reportRepo, rdb)
	unitService := unit.NewService(db, unitRepo)
	workerService := worker.NewServiceWithOutbox(db, workerRepo, counterRepo, outboxRepo)

	// --- Startup seeding ---
	ctx := context.Background()
	if err := rbacRepo.SeedDefaults(ctx); err != nil {
		return err
	}
	if err := rbacService.LoadPolicy(ctx); err != nil {
		return err
	}
	if err := incidenceService.SeedDefaultTypes(ctx); err != nil {
		return err
	}

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	attendanceHandler := attendance.NewHandlerWithRedis(attendanceService, rdb)
	incidenceHandler := incidence.NewHandler(incidenceService)
	positionHandler := position.NewHandler(positionService)
	rbacHandler := rbac.NewHandler(rbacService)
	reportHandler := report.NewHandler(reportService)
	scheduleHandler := schedule.NewHandler(scheduleService)
	unitHandler := unit.NewHandler(unitService)
	workerHandler := worker.NewHandler(workerService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, rdb)
		incidence.RegisterRoutes(api, incidenceHandler, rbacService)
		position.RegisterRoutes(api, positionHandler, rbacService)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
		report.RegisterRoutes(api, reportHandler, rbacService)
		schedule.RegisterRoutes(api, scheduleHandler, rbacService)
		unit.RegisterRoutes(api, unitHandler, rbacService)
		worker.RegisterRoutes(api, workerHandler, rbacService)
	}

	return nil
}
