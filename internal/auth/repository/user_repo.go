package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	SaveSessionToDB(ctx context.Context, session *domain.RefreshSession) error
	FindSessionByToken(ctx context.Context, token string) (*domain.RefreshSession, error)
	DeleteSessionByID(ctx context.Context, id int64) error
	DeleteSessionByToken(ctx context.Context, token string) error
}

type userRepository struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/user_repo"),
	}
}

func (r *userRepository) Create(ctx context.Context, tx pgx.Tx, user *domain.User) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.email", user.Email),
	)

	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;
	`

	err := tx.QueryRow(ctx, query, user.Email, user.Password, user.FirstName, user.LastName, user.Phone).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		span.RecordError(err)

		var pgError *pgconn.PgError

		if errors.As(err, &pgError) {
			if pgError.Code == "23505" {
				logging.Warn(
					ctx,
					r.logger,
					"User already exists",
					zap.String("email", user.Email),
				)

				return nil, ErrUserAlreadyExists
			}
		}

		logging.Error(
			ctx,
			r.logger,
			"Failed to Create user",
			zap.String("email", user.Email),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", email),
	)

	query := `
		SELECT id, email, password_hash, first_name, last_name, phone,
			address, city, state, postal_code, country, avatar, bio,
			is_admin, created_at, updated_at
		FROM users
		WHERE email = $1;
	`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName, &user.Phone,
			&user.Address, &user.City, &user.State, &user.PostalCode, &user.Country, &user.Avatar, &user.Bio,
			&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to Get by email",
			zap.String("email", email),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		SELECT id, email, first_name, last_name, phone,
			address, city, state, postal_code, country, avatar, bio,
			is_admin, created_at, updated_at
		FROM users
		WHERE id = $1;
 	`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Phone,
			&user.Address, &user.City, &user.State, &user.PostalCode, &user.Country, &user.Avatar, &user.Bio,
			&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to Get by ID",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.UpdateProfile")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", user.ID),
	)

	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3,
			address = $4, city = $5, state = $6, postal_code = $7, country = $8,
			avatar = $9, bio = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at;
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Address,
		user.City,
		user.State,
		user.PostalCode,
		user.Country,
		user.Avatar,
		user.Bio,
		user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)
			return ErrUserNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to update profile",
			zap.Int64("id", user.ID),
			zap.Error(err),
		)

		return fmt.Errorf("error updating profile: %w", err)
	}

	return nil
}

func (r *userRepository) SaveSessionToDB(ctx context.Context, session *domain.RefreshSession) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.SaveSessionToDB")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", session.UserID),
	)

	query := `
		INSERT INTO refresh_sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at;
 	`

	if err := r.pool.QueryRow(ctx, query, session.UserID, session.Token, session.ExpiresAt).
		Scan(&session.ID, &session.CreatedAt); err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to save session to db",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)

		return fmt.Errorf("error creating refresh session: %w", err)
	}

	return nil
}

func (r *userRepository) FindSessionByToken(ctx context.Context, token string) (*domain.RefreshSession, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.FindSessionByToken")
	defer span.End()

	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM refresh_sessions
		WHERE token = $1;
	`

	var result domain.RefreshSession
	if err := r.pool.QueryRow(ctx, query, token).
		Scan(&result.ID, &result.UserID, &result.Token, &result.ExpiresAt, &result.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)

			return nil, ErrSessionNotFound
		}

		span.RecordError(err)
		return nil, fmt.Errorf("error getting session: %w", err)
	}

	return &result, nil
}

func (r *userRepository) DeleteSessionByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.DeleteSessionByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		DELETE FROM refresh_sessions
		WHERE id = $1;
	`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to delete session by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting session: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *userRepository) DeleteSessionByToken(ctx context.Context, token string) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.DeleteSessionByToken")
	defer span.End()

	query := `
		DELETE FROM refresh_sessions
		WHERE token = $1;
	`

	ct, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to delete session by token",
			zap.Error(err),
		)

		return fmt.Errorf("error deleting session: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}
