package autherrors

import (
	"net/http"

	"go-compras/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid credentials!",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid token!",
		http.StatusUnauthorized,
	)
	ErrInvalidRefreshToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid refresh token!",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"Token has expired!",
		http.StatusUnauthorized,
	)
	// ErrEmailNotFound mirrors the product's reset-request answer. It reveals
	// whether an email is registered; flagged as an accepted leak.
	ErrEmailNotFound = apperror.New(
		apperror.CodeNotFound,
		"Email not found!",
		http.StatusNotFound,
	)
	ErrEmailGone = apperror.New(
		apperror.CodeNotFound,
		"Email does not exist!",
		http.StatusNotFound,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user id",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)
	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Something went wrong!",
		http.StatusInternalServerError,
	)
)
