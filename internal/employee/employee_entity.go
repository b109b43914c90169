package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is the business identity carrying the access tier. Email is unique
// among active rows only (a soft-deleted employee frees its email for reuse),
// so uniqueness is enforced by the service against active rows, not by a
// plain unique index.
type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Email       string    `gorm:"type:varchar(255);not null;index:idx_employees_email"`
	Department  string    `gorm:"type:varchar(100);not null"`
	AccessLevel int       `gorm:"type:int;not null;default:0"`

	CreatedBy string `gorm:"type:varchar(255)"`
	UpdatedBy string `gorm:"type:varchar(255)"`
	DeletedBy string `gorm:"type:varchar(255)"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// ManagerAccessLevel is the tier required to manage employees and suppliers
// (Compras and Admin).
const ManagerAccessLevel = 3

// CanManage reports whether this (active) employee may manage employee and
// supplier records.
func CanManage(e *Employee) bool {
	if e == nil {
		return false
	}
	return e.AccessLevel >= ManagerAccessLevel
}
