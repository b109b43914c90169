package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-compras/internal/auth"
	autherrors "go-compras/internal/auth/errors"
	"go-compras/internal/messaging/kafka"
	"go-compras/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeTokenRepository struct {
	withTxFn           func(tx *sql.Tx) auth.TokenRepository
	createFn           func(ctx context.Context, t *auth.VerificationToken) error
	findByTokenFn      func(ctx context.Context, token string) (*auth.VerificationToken, error)
	findByIdentifierFn func(ctx context.Context, identifier string) (*auth.VerificationToken, error)
	deleteFn           func(ctx context.Context, identifier, token string) error
}

func (f *fakeTokenRepository) WithTx(tx *sql.Tx) auth.TokenRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeTokenRepository) Create(ctx context.Context, t *auth.VerificationToken) error {
	if f.createFn != nil {
		return f.createFn(ctx, t)
	}
	return nil
}

func (f *fakeTokenRepository) FindByToken(ctx context.Context, token string) (*auth.VerificationToken, error) {
	if f.findByTokenFn != nil {
		return f.findByTokenFn(ctx, token)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokenRepository) FindByIdentifier(ctx context.Context, identifier string) (*auth.VerificationToken, error) {
	if f.findByIdentifierFn != nil {
		return f.findByIdentifierFn(ctx, identifier)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokenRepository) Delete(ctx context.Context, identifier, token string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, identifier, token)
	}
	return nil
}

type fakeUserRepository struct {
	withTxCalls           int
	createFn              func(ctx context.Context, u *user.User) error
	findByEmailFn         func(ctx context.Context, email string) (*user.User, error)
	findByEmailUnscopedFn func(ctx context.Context, email string) (*user.User, error)
	findByIDFn            func(ctx context.Context, id string) (*user.User, error)
	updateFn              func(ctx context.Context, u *user.User) error
	softDeleteByEmailFn   func(ctx context.Context, email string) error
}

func (f *fakeUserRepository) WithTx(tx *sql.Tx) user.Repository {
	f.withTxCalls++
	return f
}

func (f *fakeUserRepository) Create(ctx context.Context, u *user.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return nil
}

func (f *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) FindByEmailUnscoped(ctx context.Context, email string) (*user.User, error) {
	if f.findByEmailUnscopedFn != nil {
		return f.findByEmailUnscopedFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) Update(ctx context.Context, u *user.User) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, u)
	}
	return nil
}

func (f *fakeUserRepository) SoftDeleteByEmail(ctx context.Context, email string) error {
	if f.softDeleteByEmailFn != nil {
		return f.softDeleteByEmailFn(ctx, email)
	}
	return nil
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

type authServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service auth.Service
	tokens  *fakeTokenRepository
	users   *fakeUserRepository
	outbox  *fakeOutboxRepository
}

func setupAuthServiceTest(t *testing.T) *authServiceDeps {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	tokens := &fakeTokenRepository{}
	users := &fakeUserRepository{}
	outbox := &fakeOutboxRepository{}
	svc := auth.NewService(db, tokens, users, outbox)

	return &authServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		tokens:  tokens,
		users:   users,
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

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		userID := uuid.New()
		deps.users.findByEmailFn = func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{
				ID:       userID,
				Name:     "Maria Silva",
				Email:    email,
				Password: hashPassword(t, "Acesso123"),
				Role:     user.RoleAdmin,
			}, nil
		}

		access, refresh, resp, err := deps.service.Login(ctx, "maria@empresa.com", "Acesso123")

		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, userID.String(), resp.ID)
		assert.Equal(t, user.RoleAdmin, resp.Role)
	})

	t.Run("negative wrong password", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		deps.users.findByEmailFn = func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{
				ID:       uuid.New(),
				Email:    email,
				Password: hashPassword(t, "Acesso123"),
			}, nil
		}

		_, _, _, err := deps.service.Login(ctx, "maria@empresa.com", "errada")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("negative unknown email", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		_, _, _, err := deps.service.Login(ctx, "ninguem@empresa.com", "Acesso123")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestAuthService_RequestReset(t *testing.T) {
	ctx := context.Background()

	t.Run("success replaces previous token and enqueues email event", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.users.findByEmailFn = func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{ID: uuid.New(), Email: email}, nil
		}
		deps.tokens.findByIdentifierFn = func(ctx context.Context, identifier string) (*auth.VerificationToken, error) {
			return &auth.VerificationToken{Identifier: identifier, Token: "old-token"}, nil
		}
		var deletedToken string
		deps.tokens.deleteFn = func(ctx context.Context, identifier, token string) error {
			deletedToken = token
			return nil
		}
		var issued *auth.VerificationToken
		deps.tokens.createFn = func(ctx context.Context, tok *auth.VerificationToken) error {
			issued = tok
			return nil
		}

		err := deps.service.RequestReset(ctx, "maria@empresa.com")

		assert.NoError(t, err)
		assert.Equal(t, "old-token", deletedToken)
		assert.NotNil(t, issued)
		assert.Equal(t, "maria@empresa.com", issued.Identifier)
		assert.WithinDuration(t, time.Now().Add(time.Hour), issued.Expires, time.Minute)

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "password_reset.requested", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown email leaks not found", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		err := deps.service.RequestReset(ctx, "ninguem@empresa.com")

		assert.ErrorIs(t, err, autherrors.ErrEmailNotFound)
		assert.Empty(t, deps.outbox.created)
	})
}

func TestAuthService_CompleteReset(t *testing.T) {
	ctx := context.Background()

	t.Run("success consumes token once", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		tokenValue := uuid.NewString()
		consumed := false
		deps.tokens.findByTokenFn = func(ctx context.Context, token string) (*auth.VerificationToken, error) {
			if consumed {
				return nil, gorm.ErrRecordNotFound
			}
			return &auth.VerificationToken{
				Identifier: "maria@empresa.com",
				Token:      tokenValue,
				Expires:    time.Now().Add(30 * time.Minute),
			}, nil
		}
		deps.tokens.deleteFn = func(ctx context.Context, identifier, token string) error {
			consumed = true
			return nil
		}
		deps.users.findByEmailFn = func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{ID: uuid.New(), Email: email, Password: "old-hash"}, nil
		}
		var updated *user.User
		deps.users.updateFn = func(ctx context.Context, u *user.User) error {
			updated = u
			return nil
		}

		err := deps.service.CompleteReset(ctx, tokenValue, "novasenha1")

		assert.NoError(t, err)
		assert.NotNil(t, updated)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("novasenha1")))
		assert.Equal(t, 1, deps.users.withTxCalls)

		err = deps.service.CompleteReset(ctx, tokenValue, "novasenha2")
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative expired token", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		deps.tokens.findByTokenFn = func(ctx context.Context, token string) (*auth.VerificationToken, error) {
			return &auth.VerificationToken{
				Identifier: "maria@empresa.com",
				Token:      token,
				Expires:    time.Now().Add(-time.Minute),
			}, nil
		}

		err := deps.service.CompleteReset(ctx, uuid.NewString(), "novasenha1")

		assert.ErrorIs(t, err, autherrors.ErrTokenExpired)
	})

	t.Run("negative owner vanished", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		deps.tokens.findByTokenFn = func(ctx context.Context, token string) (*auth.VerificationToken, error) {
			return &auth.VerificationToken{
				Identifier: "sumiu@empresa.com",
				Token:      token,
				Expires:    time.Now().Add(time.Hour),
			}, nil
		}

		err := deps.service.CompleteReset(ctx, uuid.NewString(), "novasenha1")

		assert.ErrorIs(t, err, autherrors.ErrEmailGone)
	})
}

func TestAuthService_GetMe(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		userID := uuid.New()
		deps.users.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			assert.Equal(t, userID.String(), id)
			return &user.User{ID: userID, Name: "Maria Silva", Email: "maria@empresa.com", Role: user.RoleUser}, nil
		}

		resp, err := deps.service.GetMe(ctx, userID.String())

		assert.NoError(t, err)
		assert.Equal(t, "maria@empresa.com", resp.Email)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupAuthServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetMe(ctx, "nao-e-uuid")

		assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
	})
}
