package supplier

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-compras/internal/bootstrap"
	suppliererrors "go-compras/internal/supplier/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const SupplierOptionsKey = "suppliers:options"

// AccessPolicy answers whether an acting identity holds the manager tier.
// The employee service satisfies it.
type AccessPolicy interface {
	CanManageEmail(ctx context.Context, actorEmail string) (bool, error)
}

type Service interface {
	List(ctx context.Context) ([]SupplierResponse, error)
	GetOptions(ctx context.Context) ([]SupplierResponse, error)
	GetByID(ctx context.Context, id string) (SupplierResponse, error)
	Create(ctx context.Context, actorEmail string, req CreateSupplierRequest) (SupplierResponse, error)
	Update(ctx context.Context, actorEmail, id string, req UpdateSupplierRequest) (SupplierResponse, error)
	SoftDelete(ctx context.Context, actorEmail, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	policy AccessPolicy
	rdb    *redis.Client
	audit  bootstrap.AuditLogger
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, policy AccessPolicy, rdb *redis.Client, audit bootstrap.AuditLogger, logger ...*zap.Logger) Service {
	l := zap.L().Named("supplier.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("supplier.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		policy: policy,
		rdb:    rdb,
		audit:  audit,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) auditLog(ctx context.Context, action, actor, message string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Log(ctx, bootstrap.AuditLog{
		Action:  action,
		Actor:   actor,
		Message: message,
		Meta:    meta,
	})
}

func (s *service) authorize(ctx context.Context, actorEmail string) error {
	allowed, err := s.policy.CanManageEmail(ctx, actorEmail)
	if err != nil {
		s.logger.Error("supplier policy check failed", zap.Error(err))
		return err
	}
	if !allowed {
		return suppliererrors.ErrNoPermissionManage
	}
	return nil
}

func (s *service) Create(ctx context.Context, actorEmail string, req CreateSupplierRequest) (SupplierResponse, error) {
	s.logger.Debug("create supplier requested",
		zap.String("actor", actorEmail),
		zap.String("cnpj", req.Cnpj),
	)

	if err := s.authorize(ctx, actorEmail); err != nil {
		return SupplierResponse{}, err
	}

	// Permanent uniqueness: a cnpj carried by a soft-deleted row still blocks.
	if _, err := s.repo.FindByCnpjUnscoped(ctx, req.Cnpj); err == nil {
		return SupplierResponse{}, suppliererrors.ErrCnpjTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("create supplier cnpj check failed", zap.Error(err))
		return SupplierResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create supplier begin tx failed", zap.Error(err))
		return SupplierResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	sup := &Supplier{
		ID:          uuid.New(),
		Name:        req.Name,
		Cnpj:        req.Cnpj,
		Email:       req.Email,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Categories:  datatypes.NewJSONSlice(req.Categories),
		CreatedBy:   actorEmail,
	}
	if err := qtx.Create(ctx, sup); err != nil {
		s.logger.Error("create supplier persist failed", zap.Error(err))
		return SupplierResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create supplier commit failed", zap.Error(err))
		return SupplierResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	s.auditLog(ctx, "SUPPLIER_CREATED", actorEmail, "Supplier registered", map[string]any{
		"supplier_id": sup.ID.String(),
		"cnpj":        sup.Cnpj,
	})

	s.logger.Info("create supplier success", zap.String("supplier_id", sup.ID.String()))
	return mapToResponse(*sup), nil
}

func (s *service) Update(ctx context.Context, actorEmail, id string, req UpdateSupplierRequest) (SupplierResponse, error) {
	s.logger.Debug("update supplier requested",
		zap.String("actor", actorEmail),
		zap.String("supplier_id", id),
	)

	if err := s.authorize(ctx, actorEmail); err != nil {
		return SupplierResponse{}, err
	}

	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return SupplierResponse{}, mapRepositoryError(err)
	}

	// The unscoped fetch can surface a soft-deleted row; the default-scoped
	// Save would match nothing and report a phantom success.
	if sup.DeletedAt.Valid {
		return SupplierResponse{}, suppliererrors.ErrSupplierNotFound
	}

	// No cnpj re-check here; the unique index is the backstop when the tax id
	// itself changes.
	sup.Name = req.Name
	sup.Cnpj = req.Cnpj
	sup.Email = req.Email
	sup.ContactName = req.ContactName
	sup.Phone = req.Phone
	sup.Categories = datatypes.NewJSONSlice(req.Categories)
	sup.UpdatedBy = actorEmail

	if err := s.repo.Update(ctx, sup); err != nil {
		s.logger.Error("update supplier persist failed", zap.Error(err))
		return SupplierResponse{}, mapRepositoryError(err)
	}

	s.invalidateOptionsCache(ctx)
	s.auditLog(ctx, "SUPPLIER_UPDATED", actorEmail, "Supplier updated", map[string]any{
		"supplier_id": id,
	})

	s.logger.Info("update supplier success", zap.String("supplier_id", id))
	return mapToResponse(*sup), nil
}

func (s *service) SoftDelete(ctx context.Context, actorEmail, id string) error {
	s.logger.Debug("delete supplier requested",
		zap.String("actor", actorEmail),
		zap.String("supplier_id", id),
	)

	if err := s.authorize(ctx, actorEmail); err != nil {
		return err
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := s.repo.SoftDelete(ctx, id, actorEmail); err != nil {
		s.logger.Error("delete supplier failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	s.invalidateOptionsCache(ctx)
	s.auditLog(ctx, "SUPPLIER_DELETED", actorEmail, "Supplier removed", map[string]any{
		"supplier_id": id,
	})

	s.logger.Info("delete supplier success", zap.String("supplier_id", id))
	return nil
}

func (s *service) List(ctx context.Context) ([]SupplierResponse, error) {
	suppliers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("list suppliers failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(suppliers), nil
}

func (s *service) GetOptions(ctx context.Context) ([]SupplierResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, SupplierOptionsKey).Result(); err == nil {
			var resp []SupplierResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(SupplierOptionsKey, func() (interface{}, error) {
		suppliers, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(suppliers)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, SupplierOptionsKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]SupplierResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("get supplier by id failed", zap.Error(err))
		return SupplierResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*sup), nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, SupplierOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate supplier options cache",
			zap.Error(err),
			zap.String("key", SupplierOptionsKey),
		)
	}
}

func mapToResponse(s Supplier) SupplierResponse {
	resp := SupplierResponse{
		ID:          s.ID.String(),
		Name:        s.Name,
		Cnpj:        s.Cnpj,
		Email:       s.Email,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Categories:  []string(s.Categories),
		CreatedBy:   s.CreatedBy,
		UpdatedBy:   s.UpdatedBy,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
	if s.DeletedAt.Valid {
		resp.DeletedAt = s.DeletedAt.Time.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(suppliers []Supplier) []SupplierResponse {
	resp := make([]SupplierResponse, len(suppliers))
	for i, s := range suppliers {
		resp[i] = mapToResponse(s)
	}
	return resp
}
