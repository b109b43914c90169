package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-compras/internal/bootstrap"
	employeeerrors "go-compras/internal/employee/errors"
	"go-compras/internal/shared/contextutil"
	"go-compras/internal/user"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const EmployeeOptionsKey = "employees:options"

// DefaultOnboardingPassword is the fixed first-login secret every new
// employee receives. Known weakness carried over from the product decision:
// it must be changed out-of-band via the reset flow.
const DefaultOnboardingPassword = "Acesso123"

type Service interface {
	List(ctx context.Context, query string) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Create(ctx context.Context, actorEmail string, req CreateEmployeeRequest) (EmployeeResponse, error)
	Update(ctx context.Context, actorEmail, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	SoftDelete(ctx context.Context, actorEmail, id string) error

	// CanManageEmail evaluates the access policy for an acting identity;
	// the supplier module reuses it through its AccessPolicy interface.
	CanManageEmail(ctx context.Context, actorEmail string) (bool, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	users  user.Repository
	rdb    *redis.Client
	audit  bootstrap.AuditLogger
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, users user.Repository, rdb *redis.Client, audit bootstrap.AuditLogger, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		users:  users,
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

func (s *service) CanManageEmail(ctx context.Context, actorEmail string) (bool, error) {
	actor, err := s.repo.FindActiveByEmail(ctx, actorEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return CanManage(actor), nil
}

func (s *service) Create(ctx context.Context, actorEmail string, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("actor", actorEmail),
		zap.String("email", req.Email),
		zap.Int("access_level", req.AccessLevel),
	)

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		s.logger.Error("create employee count failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	// Bootstrap exception: the very first employee can be created by anyone
	// with a login, otherwise nobody could ever reach tier 3.
	if total > 0 {
		allowed, err := s.CanManageEmail(ctx, actorEmail)
		if err != nil {
			s.logger.Error("create employee policy check failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		if !allowed {
			return EmployeeResponse{}, employeeerrors.ErrNoPermissionCreate
		}
	}

	if _, err := s.repo.FindActiveByEmail(ctx, req.Email); err == nil {
		return EmployeeResponse{}, employeeerrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("create employee email check failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultOnboardingPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("create employee hash password failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl := &Employee{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       req.Email,
		Department:  req.Department,
		AccessLevel: req.AccessLevel,
		CreatedBy:   actorEmail,
	}
	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// Keep the paired login account in lockstep: restore a soft-deleted User
	// carrying this email, or mint a fresh one. Both writes share the
	// employee transaction so the pair never splits.
	utx := s.users.WithTx(tx)
	existing, err := s.users.FindByEmailUnscoped(ctx, req.Email)
	switch {
	case err == nil:
		existing.Name = req.Name
		existing.Password = string(hashed)
		existing.Role = user.RoleForAccessLevel(req.AccessLevel)
		existing.DeletedAt = gorm.DeletedAt{}
		if err := utx.Update(ctx, existing); err != nil {
			s.logger.Error("create employee restore user failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		u := &user.User{
			ID:       uuid.New(),
			Name:     req.Name,
			Email:    req.Email,
			Password: string(hashed),
			Role:     user.RoleForAccessLevel(req.AccessLevel),
		}
		if err := utx.Create(ctx, u); err != nil {
			s.logger.Error("create employee create user failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
	default:
		s.logger.Error("create employee user lookup failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	s.auditLog(ctx, "EMPLOYEE_CREATED", actorEmail, "Employee and paired login created", map[string]any{
		"employee_id": empl.ID.String(),
	})

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
	)

	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, actorEmail, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested",
		zap.String("actor", actorEmail),
		zap.String("employee_id", id),
	)

	allowed, err := s.CanManageEmail(ctx, actorEmail)
	if err != nil {
		s.logger.Error("update employee policy check failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	if !allowed {
		return EmployeeResponse{}, employeeerrors.ErrNoPermissionUpdate
	}

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("update employee fetch existing failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// The unscoped fetch can surface a soft-deleted row; the default-scoped
	// Save would match nothing and report a phantom success.
	if empl.DeletedAt.Valid {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	// Self-escalation block: a manager may edit their own record but never
	// touch their own tier, in either direction.
	actor, err := s.repo.FindActiveByEmail(ctx, actorEmail)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("update employee actor lookup failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	if err == nil && actor.ID == empl.ID && actor.AccessLevel != req.AccessLevel {
		return EmployeeResponse{}, employeeerrors.ErrSelfEscalation
	}

	if other, err := s.repo.FindActiveByEmail(ctx, req.Email); err == nil {
		if other.ID != empl.ID {
			return EmployeeResponse{}, employeeerrors.ErrEmailInUse
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("update employee email check failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	previousEmail := empl.Email
	empl.Name = req.Name
	empl.Email = req.Email
	empl.Department = req.Department
	empl.AccessLevel = req.AccessLevel
	empl.UpdatedBy = actorEmail

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// The paired User still carries the previous email when the address
	// changes; fall back to the new one for records created out of band.
	paired, err := s.users.FindByEmail(ctx, previousEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		paired, err = s.users.FindByEmail(ctx, req.Email)
	}
	switch {
	case err == nil:
		paired.Name = req.Name
		paired.Email = req.Email
		paired.Role = user.RoleForAccessLevel(req.AccessLevel)
		if err := s.users.WithTx(tx).Update(ctx, paired); err != nil {
			s.logger.Error("update employee sync user failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No login account to sync; nothing else to do.
	default:
		s.logger.Error("update employee user lookup failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	s.auditLog(ctx, "EMPLOYEE_UPDATED", actorEmail, "Employee and paired login updated", map[string]any{
		"employee_id": id,
	})

	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) SoftDelete(ctx context.Context, actorEmail, id string) error {
	s.logger.Debug("delete employee requested",
		zap.String("actor", actorEmail),
		zap.String("employee_id", id),
	)

	allowed, err := s.CanManageEmail(ctx, actorEmail)
	if err != nil {
		s.logger.Error("delete employee policy check failed", zap.Error(err))
		return err
	}
	if !allowed {
		return employeeerrors.ErrNoPermissionDelete
	}

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete employee begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.SoftDelete(ctx, id, actorEmail); err != nil {
		s.logger.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	// The login account goes away with the employee; only an active User is
	// touched so an already-deleted one keeps its original timestamp.
	if err := s.users.WithTx(tx).SoftDeleteByEmail(ctx, empl.Email); err != nil {
		s.logger.Error("delete employee soft delete user failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete employee commit failed", zap.Error(err))
		return err
	}

	s.invalidateOptionsCache(ctx)
	s.auditLog(ctx, "EMPLOYEE_DELETED", actorEmail, "Employee and paired login removed", map[string]any{
		"employee_id": id,
	})

	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) List(ctx context.Context, query string) ([]EmployeeResponse, error) {
	s.logger.Debug("list employees requested", zap.String("query", query))
	employees, err := s.repo.FindAll(ctx, query)
	if err != nil {
		s.logger.Error("list employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(employees), nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result(); err == nil {
			var resp []EmployeeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		employees, err := s.repo.FindAll(ctx, "")
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(employees)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]EmployeeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("get employee by id failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", EmployeeOptionsKey),
		)
	}
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:          e.ID.String(),
		Name:        e.Name,
		Email:       e.Email,
		Department:  e.Department,
		AccessLevel: e.AccessLevel,
		CreatedBy:   e.CreatedBy,
		UpdatedBy:   e.UpdatedBy,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if e.DeletedAt.Valid {
		resp.DeletedAt = e.DeletedAt.Time.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp
}
