package user

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	// WithTx returns a repository whose statements run inside the given
	// transaction; the employee service uses it to keep the Employee row and
	// the paired User in one atomic write.
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByEmailUnscoped also sees soft-deleted rows; the employee create
	// flow restores a previously removed User instead of inserting a second
	// row under the unique email index.
	FindByEmailUnscoped(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, u *User) error
	SoftDeleteByEmail(ctx context.Context, email string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

// conn routes statements through the held transaction, falling back to the
// shared pool outside one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.conn(ctx).Create(u).Error
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.conn(ctx).First(&u, "email = ?", email).Error
	return &u, err
}

func (r *repository) FindByEmailUnscoped(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.conn(ctx).Unscoped().First(&u, "email = ?", email).Error
	return &u, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.conn(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	// Unscoped so the restore path can clear deleted_at on a soft-deleted row.
	return r.conn(ctx).Unscoped().Save(u).Error
}

func (r *repository) SoftDeleteByEmail(ctx context.Context, email string) error {
	return r.conn(ctx).Delete(&User{}, "email = ?", email).Error
}
