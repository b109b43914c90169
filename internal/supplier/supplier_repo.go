package supplier

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *Supplier) error
	// FindAll returns active suppliers, newest first.
	FindAll(ctx context.Context) ([]Supplier, error)
	// FindByID does not filter soft-deleted rows; direct links to removed
	// suppliers keep working.
	FindByID(ctx context.Context, id string) (*Supplier, error)
	// FindByCnpjUnscoped looks across soft-deleted rows too; a cnpj is never
	// reusable once registered.
	FindByCnpjUnscoped(ctx context.Context, cnpj string) (*Supplier, error)
	Update(ctx context.Context, s *Supplier) error
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

func (r *repository) Create(ctx context.Context, s *Supplier) error {
	return r.conn(ctx).Create(s).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Supplier, error) {
	var suppliers []Supplier
	err := r.conn(ctx).Order("created_at desc").Find(&suppliers).Error
	return suppliers, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Supplier, error) {
	var s Supplier
	err := r.conn(ctx).Unscoped().First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindByCnpjUnscoped(ctx context.Context, cnpj string) (*Supplier, error) {
	var s Supplier
	err := r.conn(ctx).Unscoped().First(&s, "cnpj = ?", cnpj).Error
	return &s, err
}

func (r *repository) Update(ctx context.Context, s *Supplier) error {
	return r.conn(ctx).Save(s).Error
}

func (r *repository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	return r.conn(ctx).
		Model(&Supplier{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": time.Now().UTC(),
			"deleted_by": deletedBy,
		}).Error
}
