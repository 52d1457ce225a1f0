package reporterrors

import (
	"net/http"

	"go-asistencia/internal/shared/apperror"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)

	ErrEndBeforeStart = apperror.New(
		apperror.CodeInvalidInput,
		"The end date cannot be before the start date",
		http.StatusBadRequest,
	)

	ErrWorkerRequired = apperror.New(
		apperror.CodeInvalidInput,
		"A worker must be selected for the report",
		http.StatusBadRequest,
	)

	ErrUnitRequired = apperror.New(
		apperror.CodeInvalidInput,
		"A unit must be selected for the report",
		http.StatusBadRequest,
	)
)
