package auth

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type TokenRepository interface {
	WithTx(tx *sql.Tx) TokenRepository
	Create(ctx context.Context, t *VerificationToken) error
	FindByToken(ctx context.Context, token string) (*VerificationToken, error)
	FindByIdentifier(ctx context.Context, identifier string) (*VerificationToken, error)
	Delete(ctx context.Context, identifier, token string) error
}

type tokenRepository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) WithTx(tx *sql.Tx) TokenRepository {
	return &tokenRepository{
		db: r.db,
		tx: tx,
	}
}

// conn routes statements through the held transaction, falling back to the
// shared pool outside one.
func (r *tokenRepository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *tokenRepository) Create(ctx context.Context, t *VerificationToken) error {
	return r.conn(ctx).Create(t).Error
}

func (r *tokenRepository) FindByToken(ctx context.Context, token string) (*VerificationToken, error) {
	var t VerificationToken
	err := r.conn(ctx).First(&t, "token = ?", token).Error
	return &t, err
}

func (r *tokenRepository) FindByIdentifier(ctx context.Context, identifier string) (*VerificationToken, error) {
	var t VerificationToken
	err := r.conn(ctx).First(&t, "identifier = ?", identifier).Error
	return &t, err
}

func (r *tokenRepository) Delete(ctx context.Context, identifier, token string) error {
	return r.conn(ctx).
		Where("identifier = ? AND token = ?", identifier, token).
		Delete(&VerificationToken{}).Error
}
