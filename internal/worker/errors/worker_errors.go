package workererrors

import (
	"net/http"

	"go-asistencia/internal/shared/apperror"
)

var (
	ErrWorkerNotFound = apperror.New(
		apperror.CodeNotFound,
		"Worker not found",
		http.StatusNotFound,
	)
	ErrEmployeeNumberAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee number already exists",
		http.StatusConflict,
	)
	ErrInvalidWorkerID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid worker ID",
		http.StatusBadRequest,
	)
	ErrAppointmentTypeExists = apperror.New(
		apperror.CodeConflict,
		"Appointment type with the same description already exists",
		http.StatusConflict,
	)
)
