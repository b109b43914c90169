package purchaserequest

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *PurchaseRequest) error
	// FindAllByUser returns the owner's active requests, newest first.
	FindAllByUser(ctx context.Context, userID string) ([]PurchaseRequest, error)
	FindByID(ctx context.Context, id string) (*PurchaseRequest, error)
	Update(ctx context.Context, p *PurchaseRequest) error
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

func (r *repository) Create(ctx context.Context, p *PurchaseRequest) error {
	return r.conn(ctx).Create(p).Error
}

func (r *repository) FindAllByUser(ctx context.Context, userID string) ([]PurchaseRequest, error) {
	var requests []PurchaseRequest
	err := r.conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*PurchaseRequest, error) {
	var p PurchaseRequest
	err := r.conn(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) Update(ctx context.Context, p *PurchaseRequest) error {
	return r.conn(ctx).Save(p).Error
}

func (r *repository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	return r.conn(ctx).
		Model(&PurchaseRequest{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": time.Now().UTC(),
			"deleted_by": deletedBy,
		}).Error
}
