package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Recurso não encontrado",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"Você não tem permissão para acessar este recurso",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"Ocorreu um erro inesperado",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Não autenticado",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"Campos inválidos!",
		http.StatusBadRequest,
	)
)

func RequiredField(field string) *AppError {
	return New(
		CodeInvalidInput,
		fmt.Sprintf("%s é obrigatório", field),
		http.StatusBadRequest,
	)
}

func InvalidField(field string) *AppError {
	return New(
		CodeInvalidInput,
		fmt.Sprintf("%s é inválido", field),
		http.StatusBadRequest,
	)
}
