package employee

import (
	"errors"
	"strings"

	employeeerrors "go-compras/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	// The paired login account keeps a unique email; a duplicate there means
	// the address is already taken even when the employee check raced.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "users_email") {
			return employeeerrors.ErrEmailTaken
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "users_email") {
		return employeeerrors.ErrEmailTaken
	}

	return err
}
