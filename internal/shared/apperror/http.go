package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the projection handlers write into the response envelope.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP collapses any error into an HTTPError. Unknown errors are never
// forwarded to the client; they surface as a generic operation failure.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "Operação falhou",
	}
}
