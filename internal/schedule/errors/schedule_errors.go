package scheduleerrors

import (
	"net/http"

	"go-asistencia/internal/shared/apperror"
)

var (
	ErrShiftNotFound = apperror.New(
		apperror.CodeNotFound,
		"Shift not found",
		http.StatusNotFound,
	)
	ErrExitBeforeEntry = apperror.New(
		apperror.CodeInvalidInput,
		"Exit time must be after entry time",
		http.StatusBadRequest,
	)
	ErrDuplicateWeekday = apperror.New(
		apperror.CodeInvalidInput,
		"Weekdays must not repeat",
		http.StatusBadRequest,
	)
	ErrCalendarDayNotFound = apperror.New(
		apperror.CodeNotFound,
		"Calendar day not found",
		http.StatusNotFound,
	)
	ErrCalendarDayExists = apperror.New(
		apperror.CodeConflict,
		"A calendar entry already exists for that date",
		http.StatusConflict,
	)
	ErrCalendarDateTooOld = apperror.New(
		apperror.CodeInvalidInput,
		"Enter a valid date (2020 onwards)",
		http.StatusBadRequest,
	)
	ErrAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Shift assignment not found",
		http.StatusNotFound,
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
)
