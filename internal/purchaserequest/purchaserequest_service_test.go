package purchaserequest_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-compras/internal/messaging/kafka"
	"go-compras/internal/purchaserequest"
	purchaserequesterrors "go-compras/internal/purchaserequest/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeRequestRepository struct {
	withTxFn        func(tx *sql.Tx) purchaserequest.Repository
	createFn        func(ctx context.Context, p *purchaserequest.PurchaseRequest) error
	findAllByUserFn func(ctx context.Context, userID string) ([]purchaserequest.PurchaseRequest, error)
	findByIDFn      func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error)
	updateFn        func(ctx context.Context, p *purchaserequest.PurchaseRequest) error
	softDeleteFn    func(ctx context.Context, id, deletedBy string) error
}

func (f *fakeRequestRepository) WithTx(tx *sql.Tx) purchaserequest.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRequestRepository) Create(ctx context.Context, p *purchaserequest.PurchaseRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakeRequestRepository) FindAllByUser(ctx context.Context, userID string) ([]purchaserequest.PurchaseRequest, error) {
	if f.findAllByUserFn != nil {
		return f.findAllByUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) Update(ctx context.Context, p *purchaserequest.PurchaseRequest) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, p)
	}
	return nil
}

func (f *fakeRequestRepository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	if f.softDeleteFn != nil {
		return f.softDeleteFn(ctx, id, deletedBy)
	}
	return nil
}

type fakeCounterRepository struct {
	next int64
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type requestServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service purchaserequest.Service
	repo    *fakeRequestRepository
	outbox  *fakeOutboxRepository
}

func setupRequestServiceTest(t *testing.T) *requestServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeRequestRepository{}
	outbox := &fakeOutboxRepository{}
	svc := purchaserequest.NewService(db, repo, &fakeCounterRepository{}, outbox)

	return &requestServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		outbox:  outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func validCreateRequest(isDraft bool) purchaserequest.CreatePurchaseRequestRequest {
	return purchaserequest.CreatePurchaseRequestRequest{
		Justification: "Reposição de material de escritório",
		DueDate:       "2026-12-01",
		Items: []purchaserequest.RequestItemInput{
			{Description: "Eletrônicos", Quantity: 2, Unit: "Item"},
		},
		IsDraft: isDraft,
	}
}

func TestPurchaseRequestService_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New().String()

	t.Run("success pending with sequential code", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		var created *purchaserequest.PurchaseRequest
		deps.repo.createFn = func(ctx context.Context, p *purchaserequest.PurchaseRequest) error {
			created = p
			return nil
		}

		resp, err := deps.service.Create(ctx, ownerID, validCreateRequest(false))

		assert.NoError(t, err)
		assert.Equal(t, purchaserequest.StatusPending, resp.Status)
		assert.Equal(t, "SC1", resp.Code)
		assert.Equal(t, "2026-12-01", resp.DueDate)
		assert.Len(t, resp.Items, 1)
		assert.Equal(t, "Eletrônicos", resp.Items[0].Description)
		assert.NotNil(t, created)
		assert.Equal(t, ownerID, created.UserID.String())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success draft keeps draft status", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, ownerID, validCreateRequest(true))

		assert.NoError(t, err)
		assert.Equal(t, purchaserequest.StatusDraft, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative justification too short", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest(false)
		req.Justification = "curta"

		_, err := deps.service.Create(ctx, ownerID, req)

		assert.ErrorIs(t, err, purchaserequesterrors.ErrJustificationTooShort)
	})

	t.Run("negative item without quantity", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest(false)
		req.Items[0].Quantity = 0

		_, err := deps.service.Create(ctx, ownerID, req)

		assert.ErrorIs(t, err, purchaserequesterrors.ErrInvalidItem)
	})

	t.Run("negative unparseable due date", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest(false)
		req.DueDate = "01/12/2026"

		_, err := deps.service.Create(ctx, ownerID, req)

		assert.ErrorIs(t, err, purchaserequesterrors.ErrInvalidDueDate)
	})
}

func TestPurchaseRequestService_Update(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	requestID := uuid.New()

	existing := func(status string) *purchaserequest.PurchaseRequest {
		return &purchaserequest.PurchaseRequest{
			ID:            requestID,
			Code:          "SC7",
			UserID:        ownerID,
			Justification: "Justificativa original longa",
			Status:        status,
			Items: datatypes.NewJSONSlice([]purchaserequest.RequestItem{
				{Description: "Cadeira", Quantity: 1, Unit: "Item"},
			}),
		}
	}

	t.Run("success pending to draft", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
			return existing(purchaserequest.StatusPending), nil
		}
		var updated *purchaserequest.PurchaseRequest
		deps.repo.updateFn = func(ctx context.Context, p *purchaserequest.PurchaseRequest) error {
			updated = p
			return nil
		}

		req := purchaserequest.UpdatePurchaseRequestRequest{
			Justification: "Justificativa revisada com detalhes",
			DueDate:       "2026-11-15",
			Items: []purchaserequest.RequestItemInput{
				{Description: "Mesa", Quantity: 3, Unit: "Item"},
			},
			IsDraft: true,
		}

		resp, err := deps.service.Update(ctx, ownerID.String(), requestID.String(), req)

		assert.NoError(t, err)
		assert.Equal(t, purchaserequest.StatusDraft, resp.Status)
		assert.NotNil(t, updated)
		assert.Equal(t, "Mesa", updated.Items[0].Description)
	})

	t.Run("negative approved request is immutable", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
			return existing(purchaserequest.StatusApproved), nil
		}

		req := purchaserequest.UpdatePurchaseRequestRequest{
			Justification: "Tentativa de edição após aprovação",
			DueDate:       "2026-11-15",
			Items: []purchaserequest.RequestItemInput{
				{Description: "Mesa", Quantity: 3, Unit: "Item"},
			},
		}

		_, err := deps.service.Update(ctx, ownerID.String(), requestID.String(), req)

		assert.ErrorIs(t, err, purchaserequesterrors.ErrApprovedImmutable)
	})

	t.Run("negative other user's request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
			return existing(purchaserequest.StatusPending), nil
		}

		_, err := deps.service.Update(ctx, uuid.New().String(), requestID.String(), purchaserequest.UpdatePurchaseRequestRequest{
			Justification: "Justificativa suficientemente longa",
			DueDate:       "2026-11-15",
			Items: []purchaserequest.RequestItemInput{
				{Description: "Mesa", Quantity: 1, Unit: "Item"},
			},
		})

		assert.ErrorIs(t, err, purchaserequesterrors.ErrNotOwner)
	})
}

func TestPurchaseRequestService_Approve(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	requestID := uuid.New()
	actorEmail := "dono@empresa.com"

	t.Run("success stamps approval and enqueues event", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
			return &purchaserequest.PurchaseRequest{
				ID:     requestID,
				Code:   "SC9",
				UserID: ownerID,
				Status: purchaserequest.StatusPending,
			}, nil
		}
		var updated *purchaserequest.PurchaseRequest
		deps.repo.updateFn = func(ctx context.Context, p *purchaserequest.PurchaseRequest) error {
			updated = p
			return nil
		}

		resp, err := deps.service.Approve(ctx, ownerID.String(), actorEmail, requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, purchaserequest.StatusApproved, resp.Status)
		assert.Equal(t, actorEmail, resp.ApprovedBy)
		assert.NotEmpty(t, resp.ApprovedAt)
		assert.NotNil(t, updated)
		assert.NotNil(t, updated.ApprovedAt)

		assert.Len(t, deps.outbox.created, 1)
		event := deps.outbox.created[0]
		assert.Equal(t, "purchase_request.approved", event.EventType)
		var payload map[string]any
		assert.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, "SC9", payload["code"])
		assert.Equal(t, actorEmail, payload["approved_by"])
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success idempotent second approve", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		approvedAt := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
			return &purchaserequest.PurchaseRequest{
				ID:         requestID,
				UserID:     ownerID,
				Status:     purchaserequest.StatusApproved,
				ApprovedAt: &approvedAt,
				ApprovedBy: actorEmail,
			}, nil
		}

		resp, err := deps.service.Approve(ctx, ownerID.String(), actorEmail, requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, purchaserequest.StatusApproved, resp.Status)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPurchaseRequestService_SoftDelete(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	requestID := uuid.New()
	actorEmail := "dono@empresa.com"

	t.Run("success allowed for approved request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
			return &purchaserequest.PurchaseRequest{
				ID:     requestID,
				UserID: ownerID,
				Status: purchaserequest.StatusApproved,
			}, nil
		}
		deps.repo.softDeleteFn = func(ctx context.Context, id, deletedBy string) error {
			assert.Equal(t, requestID.String(), id)
			assert.Equal(t, actorEmail, deletedBy)
			return nil
		}

		err := deps.service.SoftDelete(ctx, ownerID.String(), actorEmail, requestID.String())

		assert.NoError(t, err)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
			return nil, gorm.ErrRecordNotFound
		}

		err := deps.service.SoftDelete(ctx, ownerID.String(), actorEmail, requestID.String())

		assert.ErrorIs(t, err, purchaserequesterrors.ErrRequestNotFound)
	})
}

func TestPurchaseRequestService_GetByID(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	requestID := uuid.New()

	t.Run("success round trip", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
			return &purchaserequest.PurchaseRequest{
				ID:            requestID,
				Code:          "SC3",
				UserID:        ownerID,
				Justification: "Reposição de material de escritório",
				DueDate:       time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
				Status:        purchaserequest.StatusPending,
				Items: datatypes.NewJSONSlice([]purchaserequest.RequestItem{
					{Description: "Eletrônicos", Quantity: 2, Unit: "Item"},
				}),
			}, nil
		}

		resp, err := deps.service.GetByID(ctx, ownerID.String(), requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, "Reposição de material de escritório", resp.Justification)
		assert.Equal(t, "2026-12-01", resp.DueDate)
		assert.Equal(t, 2, resp.Items[0].Quantity)
	})

	t.Run("negative foreign owner gets forbidden", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*purchaserequest.PurchaseRequest, error) {
			return &purchaserequest.PurchaseRequest{ID: requestID, UserID: ownerID}, nil
		}

		_, err := deps.service.GetByID(ctx, uuid.New().String(), requestID.String())

		assert.ErrorIs(t, err, purchaserequesterrors.ErrNotOwner)
	})
}
