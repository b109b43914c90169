package supplier

import (
	"errors"
	"strings"

	suppliererrors "go-compras/internal/supplier/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return suppliererrors.ErrSupplierNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_suppliers_cnpj" {
			return suppliererrors.ErrCnpjTaken
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_suppliers_cnpj") {
		return suppliererrors.ErrCnpjTaken
	}

	return err
}
