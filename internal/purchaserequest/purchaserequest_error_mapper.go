package purchaserequest

import (
	"errors"

	purchaserequesterrors "go-compras/internal/purchaserequest/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return purchaserequesterrors.ErrRequestNotFound
	}

	return err
}
