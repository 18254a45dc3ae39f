package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/jwtutil"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/validator"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	outboxDomain "github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/worker"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	userEventsTopic = "user_events"
	refreshTTL      = 30 * 24 * time.Hour
)

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
}

// UpdateProfileRequest carries a partial profile update, nil fields are left
// untouched.
type UpdateProfileRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
	Avatar     *string `json:"avatar"`
	Bio        *string `json:"bio"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserInfo(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*domain.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	outboxRepo worker.OutboxRepository
	logger     *zap.Logger
	pool       *pgxpool.Pool
	validator  validator.Validator
}

func NewAuthService(
	userRepo repository.UserRepository,
	outboxRepo worker.OutboxRepository,
	logger *zap.Logger,
	pool *pgxpool.Pool,
	validator validator.Validator,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
		pool:       pool,
		validator:  validator,
	}
}

// Register creates the user and its UserRegistered outbox row in one
// transaction. New users never get the admin flag here, it is granted
// out of band.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*domain.User, error) {
	if err := s.validator.ValidatePassword(req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error hashing password",
			zap.String("email", req.Email),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &domain.User{
		Email:     req.Email,
		Password:  string(hashedPass),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error starting transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(cleanupCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(
				ctx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
				zap.String("method_name", "Register"),
			)
		}
	}()

	result, err := s.userRepo.Create(ctx, tx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			logging.Info(
				ctx,
				s.logger,
				"User already exists",
				zap.String("email", req.Email),
			)

			return nil, err
		}

		logging.Error(
			ctx,
			s.logger,
			"Error creating user",
			zap.String("email", user.Email),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error creating user: %w", err)
	}

	eventEnvelope := map[string]any{
		"event": "UserRegistered",
		"payload": map[string]any{
			"user_id":  result.ID,
			"email":    result.Email,
			"event_id": result.ID,
		},
	}

	payloadBytes, err := json.Marshal(eventEnvelope)
	if err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Failed to marshal event envelope",
			zap.Error(err),
		)

		return nil, err
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "User",
		AggregateID:   fmt.Sprintf("%d", result.ID),
		EventType:     "UserRegistered",
		Payload:       payloadBytes,
		Topic:         userEventsTopic,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error saving outbox event",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Error getting by email",
			zap.Error(err),
			zap.String("email", email),
		)

		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Invalid credentials",
		)

		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := jwtutil.GenerateTokens(user.ID, user.IsAdmin)
	if err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Failed to generate tokens",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	session := &domain.RefreshSession{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTTL),
	}

	err = s.userRepo.SaveSessionToDB(ctx, session)
	if err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Failed to save session to db",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to save session to db: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates the session: the presented token is deleted and a new pair
// is issued. The admin flag is re-read from storage, not trusted from the old
// token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	_, err := jwtutil.ValidateToken(refreshToken, true)
	if err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Error validating token",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error validating token: %w", err)
	}

	session, err := s.userRepo.FindSessionByToken(ctx, refreshToken)
	if err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Error finding session",
			zap.Error(err),
		)

		return nil, err
	}

	if err := s.userRepo.DeleteSessionByID(ctx, session.ID); err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Error deleting session by id",
			zap.Int64("session_id", session.ID),
		)

		return nil, err
	}

	if session.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token expired")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Error finding user by id",
			zap.Int64("user_id", session.UserID),
		)

		return nil, err
	}

	newAccess, newRefresh, err := jwtutil.GenerateTokens(user.ID, user.IsAdmin)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error generating tokens",
			zap.Int64("user_id", user.ID),
		)

		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	newSession := domain.RefreshSession{
		UserID:    user.ID,
		Token:     newRefresh,
		ExpiresAt: time.Now().Add(refreshTTL),
	}
	if err := s.userRepo.SaveSessionToDB(ctx, &newSession); err != nil {
		return nil, fmt.Errorf("error saving session to db: %w", err)
	}

	return &TokenPair{AccessToken: newAccess, RefreshToken: newRefresh}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	err := s.userRepo.DeleteSessionByToken(ctx, refreshToken)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error deleting session",
			zap.String("method_name", "Logout"),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting session: %w", err)
	}

	return nil
}

func (s *authService) GetUserInfo(ctx context.Context, id int64) (*domain.User, error) {
	res, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error finding user by id",
			zap.Error(err),
			zap.Int64("user_id", id),
		)

		return nil, err
	}

	return res, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.State != nil {
		user.State = *req.State
	}
	if req.PostalCode != nil {
		user.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		user.Country = *req.Country
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
