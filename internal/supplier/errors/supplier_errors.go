package suppliererrors

import (
	"net/http"

	"go-compras/internal/shared/apperror"
)

var (
	ErrSupplierNotFound = apperror.New(
		apperror.CodeNotFound,
		"Fornecedor não encontrado",
		http.StatusNotFound,
	)
	ErrCnpjTaken = apperror.New(
		apperror.CodeConflict,
		"CNPJ já cadastrado!",
		http.StatusConflict,
	)
	ErrNoPermissionManage = apperror.New(
		apperror.CodeForbidden,
		"Sem permissão para gerenciar fornecedores.",
		http.StatusForbidden,
	)
)
