package purchaserequesterrors

import (
	"net/http"

	"go-compras/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"Solicitação não encontrada",
		http.StatusNotFound,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"Você não tem acesso a esta solicitação.",
		http.StatusForbidden,
	)
	ErrApprovedImmutable = apperror.New(
		apperror.CodeInvalidState,
		"Solicitação aprovada não pode ser editada.",
		http.StatusConflict,
	)
	ErrInvalidDueDate = apperror.New(
		apperror.CodeInvalidInput,
		"Data desejada é inválida",
		http.StatusBadRequest,
	)
	ErrJustificationTooShort = apperror.New(
		apperror.CodeInvalidInput,
		"Justificativa deve ter pelo menos 10 caracteres",
		http.StatusBadRequest,
	)
	ErrNoItems = apperror.New(
		apperror.CodeInvalidInput,
		"Adicione pelo menos um item",
		http.StatusBadRequest,
	)
	ErrInvalidItem = apperror.New(
		apperror.CodeInvalidInput,
		"Item inválido: descrição, quantidade e unidade são obrigatórios",
		http.StatusBadRequest,
	)
)
