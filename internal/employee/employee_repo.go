package employee

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	// FindAll returns active employees ordered by name, optionally filtered
	// by a case-insensitive substring match on name or email.
	FindAll(ctx context.Context, query string) ([]Employee, error)
	// FindByID does not filter soft-deleted rows; direct links to removed
	// employees keep working.
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindActiveByEmail(ctx context.Context, email string) (*Employee, error)
	// CountAll counts every row including soft-deleted ones; the bootstrap
	// exception only applies to a truly empty table.
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, e *Employee) error
	SoftDelete(ctx context.Context, id, deletedBy string) error
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

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.conn(ctx).Create(e).Error
}

func (r *repository) FindAll(ctx context.Context, query string) ([]Employee, error) {
	var employees []Employee
	db := r.conn(ctx)
	if query != "" {
		pattern := "%" + query + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	err := db.Order("name asc").Find(&employees).Error
	return employees, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.conn(ctx).Unscoped().First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindActiveByEmail(ctx context.Context, email string) (*Employee, error) {
	var e Employee
	err := r.conn(ctx).First(&e, "email = ?", email).Error
	return &e, err
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&Employee{}).Unscoped().Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.conn(ctx).Save(e).Error
}

func (r *repository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	return r.conn(ctx).
		Model(&Employee{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": time.Now().UTC(),
			"deleted_by": deletedBy,
		}).Error
}
