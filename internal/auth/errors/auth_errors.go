package autherrors

import (
	"net/http"

	"go-asistencia/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid email or password",
		http.StatusUnauthorized,
	)

	ErrAccountInactive = apperror.New(
		apperror.CodeForbidden,
		"The account has been deactivated",
		http.StatusForbidden,
	)

	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid token",
		http.StatusUnauthorized,
	)

	ErrInvalidRefreshToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid or expired refresh token",
		http.StatusUnauthorized,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"The email is already registered",
		http.StatusConflict,
	)

	ErrWorkerAlreadyLinked = apperror.New(
		apperror.CodeConflict,
		"The worker already has an account",
		http.StatusConflict,
	)

	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Could not generate the session token",
		http.StatusInternalServerError,
	)

	ErrUnknownRole = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown role",
		http.StatusBadRequest,
	)
)
