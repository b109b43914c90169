package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the login identity. Every Employee has at most one User paired by
// email (no foreign key); the employee service keeps the pair in sync.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `gorm:"type:text;not null"`
	Role      string    `gorm:"type:varchar(20);not null;default:'USER'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// RoleForAccessLevel maps an employee tier to the login role: only tier 4
// grants ADMIN.
func RoleForAccessLevel(accessLevel int) string {
	if accessLevel == 4 {
		return RoleAdmin
	}
	return RoleUser
}
