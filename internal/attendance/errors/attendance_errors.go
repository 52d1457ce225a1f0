package attendanceerrors

import (
	"net/http"

	"go-asistencia/internal/shared/apperror"
)

var (
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
	ErrRecordAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"An attendance record already exists for this worker and date",
		http.StatusConflict,
	)
	ErrDayComplete = apperror.New(
		apperror.CodeConflict,
		"Today's attendance record already has entry and exit",
		http.StatusConflict,
	)
	ErrWorkerNotLinked = apperror.New(
		apperror.CodeForbidden,
		"Your account is not linked to a worker",
		http.StatusForbidden,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidTime = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid time of day, expected HH:MM:SS or HH:MM",
		http.StatusBadRequest,
	)
)
