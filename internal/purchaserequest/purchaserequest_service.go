package purchaserequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-compras/internal/events"
	"go-compras/internal/messaging/kafka"
	purchaserequesterrors "go-compras/internal/purchaserequest/errors"
	"go-compras/internal/shared/contextutil"
	"go-compras/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SequenceCounterType keys the shared counter row used to mint request codes.
const SequenceCounterType = "purchase_request"

const dueDateLayout = "2006-01-02"

type Service interface {
	List(ctx context.Context, userID string) ([]PurchaseRequestResponse, error)
	GetByID(ctx context.Context, userID, id string) (PurchaseRequestResponse, error)
	Create(ctx context.Context, userID string, req CreatePurchaseRequestRequest) (PurchaseRequestResponse, error)
	Update(ctx context.Context, userID, id string, req UpdatePurchaseRequestRequest) (PurchaseRequestResponse, error)
	Approve(ctx context.Context, userID, actorEmail, id string) (PurchaseRequestResponse, error)
	SoftDelete(ctx context.Context, userID, actorEmail, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("purchaserequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("purchaserequest.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counterRepo,
		outbox:  outbox,
		logger:  l,
	}
}

func statusFor(isDraft bool) string {
	if isDraft {
		return StatusDraft
	}
	return StatusPending
}

func validateContent(justification, dueDate string, items []RequestItemInput) (time.Time, error) {
	if len(strings.TrimSpace(justification)) < 10 {
		return time.Time{}, purchaserequesterrors.ErrJustificationTooShort
	}
	if len(items) == 0 {
		return time.Time{}, purchaserequesterrors.ErrNoItems
	}
	for _, it := range items {
		if strings.TrimSpace(it.Description) == "" || strings.TrimSpace(it.Unit) == "" || it.Quantity < 1 {
			return time.Time{}, purchaserequesterrors.ErrInvalidItem
		}
	}

	due, err := time.ParseInLocation(dueDateLayout, dueDate, time.UTC)
	if err != nil {
		return time.Time{}, purchaserequesterrors.ErrInvalidDueDate
	}
	return due, nil
}

func toItems(inputs []RequestItemInput) datatypes.JSONSlice[RequestItem] {
	items := make([]RequestItem, len(inputs))
	for i, it := range inputs {
		items[i] = RequestItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
		}
	}
	return datatypes.NewJSONSlice(items)
}

// findOwned fetches a request and enforces that it belongs to userID.
// Outsiders get the same not-found answer as a missing row, so request ids
// cannot be probed across users.
func (s *service) findOwned(ctx context.Context, userID, id string) (*PurchaseRequest, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if p.UserID.String() != userID {
		return nil, purchaserequesterrors.ErrNotOwner
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, userID string, req CreatePurchaseRequestRequest) (PurchaseRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create purchase request requested",
		zap.String("request_id", rid),
		zap.String("user_id", userID),
		zap.Bool("is_draft", req.IsDraft),
	)

	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return PurchaseRequestResponse{}, purchaserequesterrors.ErrRequestNotFound
	}

	due, err := validateContent(req.Justification, req.DueDate, req.Items)
	if err != nil {
		return PurchaseRequestResponse{}, err
	}

	seq, err := s.counter.GetNextValue(ctx, SequenceCounterType)
	if err != nil {
		s.logger.Error("create purchase request sequence failed", zap.Error(err))
		return PurchaseRequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create purchase request begin tx failed", zap.Error(err))
		return PurchaseRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p := &PurchaseRequest{
		ID:            uuid.New(),
		Code:          fmt.Sprintf("SC%d", seq),
		SequenceID:    seq,
		UserID:        ownerID,
		Justification: req.Justification,
		DueDate:       due,
		Items:         toItems(req.Items),
		Status:        statusFor(req.IsDraft),
	}
	if err := qtx.Create(ctx, p); err != nil {
		s.logger.Error("create purchase request persist failed", zap.Error(err))
		return PurchaseRequestResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create purchase request commit failed", zap.Error(err))
		return PurchaseRequestResponse{}, err
	}

	s.logger.Info("create purchase request success",
		zap.String("request_id", rid),
		zap.String("purchase_request_id", p.ID.String()),
		zap.String("code", p.Code),
		zap.String("status", p.Status),
	)

	return mapToResponse(*p), nil
}

func (s *service) Update(ctx context.Context, userID, id string, req UpdatePurchaseRequestRequest) (PurchaseRequestResponse, error) {
	s.logger.Debug("update purchase request requested",
		zap.String("user_id", userID),
		zap.String("purchase_request_id", id),
	)

	p, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return PurchaseRequestResponse{}, err
	}

	if !p.Editable() {
		return PurchaseRequestResponse{}, purchaserequesterrors.ErrApprovedImmutable
	}

	due, err := validateContent(req.Justification, req.DueDate, req.Items)
	if err != nil {
		return PurchaseRequestResponse{}, err
	}

	p.Justification = req.Justification
	p.DueDate = due
	p.Items = toItems(req.Items)
	p.Status = statusFor(req.IsDraft)

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("update purchase request persist failed", zap.Error(err))
		return PurchaseRequestResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("update purchase request success",
		zap.String("purchase_request_id", id),
		zap.String("status", p.Status),
	)

	return mapToResponse(*p), nil
}

func (s *service) Approve(ctx context.Context, userID, actorEmail, id string) (PurchaseRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("approve purchase request requested",
		zap.String("request_id", rid),
		zap.String("user_id", userID),
		zap.String("purchase_request_id", id),
	)

	p, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return PurchaseRequestResponse{}, err
	}

	// Approving twice is a no-op; the first stamp wins and no second event
	// goes out.
	if p.Status == StatusApproved {
		return mapToResponse(*p), nil
	}

	now := time.Now().UTC()
	p.Status = StatusApproved
	p.ApprovedAt = &now
	p.ApprovedBy = actorEmail

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve purchase request begin tx failed", zap.Error(err))
		return PurchaseRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Error("approve purchase request persist failed", zap.Error(err))
		return PurchaseRequestResponse{}, mapRepositoryError(err)
	}

	payload, err := json.Marshal(events.PurchaseRequestApprovedEvent{
		EventType:  "purchase_request.approved",
		RequestID:  p.ID.String(),
		Code:       p.Code,
		OwnerID:    p.UserID.String(),
		ApprovedBy: actorEmail,
		OccurredAt: now,
	})
	if err != nil {
		s.logger.Error("approve purchase request marshal event failed", zap.Error(err))
		return PurchaseRequestResponse{}, err
	}

	outboxEvent := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "purchase_request",
		AggregateID:   p.ID.String(),
		EventType:     "purchase_request.approved",
		Topic:         events.PurchaseRequestApprovedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
		s.logger.Error("approve purchase request outbox enqueue failed", zap.Error(err))
		return PurchaseRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve purchase request commit failed", zap.Error(err))
		return PurchaseRequestResponse{}, err
	}

	s.logger.Info("approve purchase request success",
		zap.String("request_id", rid),
		zap.String("purchase_request_id", id),
		zap.String("approved_by", actorEmail),
	)

	return mapToResponse(*p), nil
}

func (s *service) SoftDelete(ctx context.Context, userID, actorEmail, id string) error {
	s.logger.Debug("delete purchase request requested",
		zap.String("user_id", userID),
		zap.String("purchase_request_id", id),
	)

	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}

	// Deletion is allowed from any status, approved included; the row keeps
	// its status and gains the deletion stamp.
	if err := s.repo.SoftDelete(ctx, id, actorEmail); err != nil {
		s.logger.Error("delete purchase request failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	s.logger.Info("delete purchase request success", zap.String("purchase_request_id", id))
	return nil
}

func (s *service) List(ctx context.Context, userID string) ([]PurchaseRequestResponse, error) {
	requests, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list purchase requests failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	resp := make([]PurchaseRequestResponse, len(requests))
	for i, p := range requests {
		resp[i] = mapToResponse(p)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, userID, id string) (PurchaseRequestResponse, error) {
	p, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return PurchaseRequestResponse{}, err
	}
	return mapToResponse(*p), nil
}

func mapToResponse(p PurchaseRequest) PurchaseRequestResponse {
	resp := PurchaseRequestResponse{
		ID:            p.ID.String(),
		Code:          p.Code,
		UserID:        p.UserID.String(),
		Justification: p.Justification,
		DueDate:       p.DueDate.Format(dueDateLayout),
		Items:         []RequestItem(p.Items),
		Status:        p.Status,
		ApprovedBy:    p.ApprovedBy,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.ApprovedAt != nil {
		resp.ApprovedAt = p.ApprovedAt.Format(time.RFC3339)
	}
	if p.DeletedAt.Valid {
		resp.DeletedAt = p.DeletedAt.Time.Format(time.RFC3339)
	}
	return resp
}
