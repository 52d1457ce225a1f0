package worker

import (
	"errors"
	"strings"

	workererrors "go-asistencia/internal/worker/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return workererrors.ErrWorkerNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "idx_workers_employee_number":
				return workererrors.ErrEmployeeNumberAlreadyExists
			case "idx_appointment_types_description":
				return workererrors.ErrAppointmentTypeExists
			}
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "employee_number") {
		return workererrors.ErrEmployeeNumberAlreadyExists
	}
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "appointment_types") {
		return workererrors.ErrAppointmentTypeExists
	}

	return err
}
