package supplier

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Supplier is a vendor registry entry. The cnpj is unique across every row
// including soft-deleted ones; a removed supplier never frees its tax id.
type Supplier struct {
	ID          uuid.UUID                  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string                     `gorm:"type:varchar(255);not null"`
	Cnpj        string                     `gorm:"type:varchar(18);not null;uniqueIndex:uq_suppliers_cnpj"`
	Email       string                     `gorm:"type:varchar(255);not null"`
	ContactName string                     `gorm:"type:varchar(255);not null"`
	Phone       string                     `gorm:"type:varchar(20);not null"`
	Categories  datatypes.JSONSlice[string] `gorm:"not null"`

	CreatedBy string `gorm:"type:varchar(255)"`
	UpdatedBy string `gorm:"type:varchar(255)"`
	DeletedBy string `gorm:"type:varchar(255)"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
