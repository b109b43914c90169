package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"time"

	autherrors "go-compras/internal/auth/errors"
	"go-compras/internal/events"
	"go-compras/internal/messaging/kafka"
	"go-compras/internal/shared/contextutil"
	"go-compras/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	resetTokenTTL   = time.Hour
)

type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	RequestReset(ctx context.Context, email string) error
	CompleteReset(ctx context.Context, token, newPassword string) error
}

type service struct {
	db     *sql.DB
	tokens TokenRepository
	users  user.Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	tokens TokenRepository,
	users user.Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		db:     db,
		tokens: tokens,
		users:  users,
		outbox: outbox,
		logger: l,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
		}
		s.logger.Error("login user lookup failed", zap.Error(err))
		return "", "", AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	accessToken, err := s.generateToken(u.ID.String(), u.Email, u.Role, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := s.generateToken(u.ID.String(), u.Email, u.Role, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success", zap.String("user_id", u.ID.String()))

	return accessToken, refreshToken, AuthResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidUserID
	}

	u, err := s.users.FindByID(ctx, userID.String())
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	newAccessToken, err := s.generateToken(u.ID.String(), u.Email, u.Role, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	newRefreshToken, err := s.generateToken(u.ID.String(), u.Email, u.Role, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccessToken, newRefreshToken, AuthResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.users.FindByID(ctx, id.String())
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	return &AuthResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, nil
}

func (s *service) RequestReset(ctx context.Context, email string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("password reset requested", zap.String("request_id", rid))

	// Answering "not found" here confirms which emails are registered. The
	// product shipped this way; keeping the behavior until UX revisits it.
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return autherrors.ErrEmailNotFound
		}
		s.logger.Error("reset request user lookup failed", zap.Error(err))
		return err
	}

	now := time.Now().UTC()
	t := &VerificationToken{
		Identifier: u.Email,
		Token:      uuid.NewString(),
		Expires:    now.Add(resetTokenTTL),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reset request begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.tokens.WithTx(tx)

	// One live token per identifier; a fresh request invalidates the old link.
	if existing, err := s.tokens.FindByIdentifier(ctx, u.Email); err == nil {
		if err := qtx.Delete(ctx, existing.Identifier, existing.Token); err != nil {
			s.logger.Error("reset request delete stale token failed", zap.Error(err))
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("reset request token lookup failed", zap.Error(err))
		return err
	}

	if err := qtx.Create(ctx, t); err != nil {
		s.logger.Error("reset request create token failed", zap.Error(err))
		return err
	}

	payload, err := json.Marshal(events.PasswordResetRequestedEvent{
		EventType:  "password_reset.requested",
		Email:      u.Email,
		Token:      t.Token,
		ExpiresAt:  t.Expires,
		OccurredAt: now,
	})
	if err != nil {
		return err
	}

	outboxEvent := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "user",
		AggregateID:   u.ID.String(),
		EventType:     "password_reset.requested",
		Topic:         events.PasswordResetRequestedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
		s.logger.Error("reset request outbox enqueue failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reset request commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("password reset token issued", zap.String("user_id", u.ID.String()))
	return nil
}

func (s *service) CompleteReset(ctx context.Context, token, newPassword string) error {
	t, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return autherrors.ErrInvalidToken
		}
		s.logger.Error("complete reset token lookup failed", zap.Error(err))
		return err
	}

	if time.Now().After(t.Expires) {
		return autherrors.ErrTokenExpired
	}

	u, err := s.users.FindByEmail(ctx, t.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return autherrors.ErrEmailGone
		}
		s.logger.Error("complete reset user lookup failed", zap.Error(err))
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("complete reset begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.tokens.WithTx(tx)

	// Password rotation and token consumption commit or roll back together.
	u.Password = string(hashed)
	if err := s.users.WithTx(tx).Update(ctx, u); err != nil {
		s.logger.Error("complete reset update password failed", zap.Error(err))
		return err
	}

	if err := qtx.Delete(ctx, t.Identifier, t.Token); err != nil {
		s.logger.Error("complete reset consume token failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("complete reset commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("password reset completed", zap.String("user_id", u.ID.String()))
	return nil
}

// reusable token generator
func (s *service) generateToken(userID, email, role string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"user_email": email,
		"role":       role,
		"exp":        time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
