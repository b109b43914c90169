package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-compras/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("success app error passthrough", func(t *testing.T) {
		appErr := apperror.New(apperror.CodeConflict, "CNPJ já cadastrado!", http.StatusConflict)

		httpErr := apperror.ToHTTP(appErr)

		assert.Equal(t, http.StatusConflict, httpErr.Status)
		assert.Equal(t, apperror.CodeConflict, httpErr.Code)
		assert.Equal(t, "CNPJ já cadastrado!", httpErr.Message)
	})

	t.Run("success wrapped app error unwraps", func(t *testing.T) {
		appErr := apperror.Wrap(errors.New("pq: connection refused"), apperror.CodeServiceUnavailable, "Serviço indisponível", http.StatusServiceUnavailable)
		wrapped := fmt.Errorf("create supplier: %w", appErr)

		httpErr := apperror.ToHTTP(wrapped)

		assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
		assert.Equal(t, apperror.CodeServiceUnavailable, httpErr.Code)
	})

	t.Run("negative unknown error hidden from client", func(t *testing.T) {
		httpErr := apperror.ToHTTP(errors.New("pq: deadlock detected"))

		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, apperror.CodeInternalError, httpErr.Code)
		assert.NotContains(t, httpErr.Message, "deadlock")
	})
}
