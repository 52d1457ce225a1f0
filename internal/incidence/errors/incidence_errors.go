package incidenceerrors

import (
	"net/http"

	"go-asistencia/internal/shared/apperror"
)

var (
	ErrIncidenceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Incidence not found",
		http.StatusNotFound,
	)
	ErrTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Incidence type not found",
		http.StatusNotFound,
	)
	ErrTypeInactive = apperror.New(
		apperror.CodeInvalidInput,
		"Incidence type is not active",
		http.StatusBadRequest,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending incidences can be modified or decided",
		http.StatusConflict,
	)
	ErrEndBeforeStart = apperror.New(
		apperror.CodeInvalidInput,
		"End date cannot be before the start date",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidWorkerID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid worker ID",
		http.StatusBadRequest,
	)
)
