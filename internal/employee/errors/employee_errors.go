package employeeerrors

import (
	"net/http"

	"go-compras/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Funcionário não encontrado",
		http.StatusNotFound,
	)
	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"Email já cadastrado!",
		http.StatusConflict,
	)
	ErrEmailInUse = apperror.New(
		apperror.CodeConflict,
		"Email já em uso por outro funcionário!",
		http.StatusConflict,
	)
	ErrNoPermissionCreate = apperror.New(
		apperror.CodeForbidden,
		"Sem permissão para criar funcionários.",
		http.StatusForbidden,
	)
	ErrNoPermissionUpdate = apperror.New(
		apperror.CodeForbidden,
		"Sem permissão para editar funcionários.",
		http.StatusForbidden,
	)
	ErrNoPermissionDelete = apperror.New(
		apperror.CodeForbidden,
		"Sem permissão para excluir funcionários.",
		http.StatusForbidden,
	)
	ErrSelfEscalation = apperror.New(
		apperror.CodeSelfEscalation,
		"Você não pode alterar seu próprio nível de acesso.",
		http.StatusForbidden,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"ID de funcionário inválido",
		http.StatusBadRequest,
	)
)
