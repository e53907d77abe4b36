package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, first_name, last_name, email, password_hash, bio, phone, is_staff, created_at`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Bio,
		&user.Phone,
		&user.IsStaff,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, first_name, last_name, email, password_hash, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.IsStaff,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByUsername получает пользователя по логину
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.QueryRow(ctx, query, username))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return user, nil
}

// UpdateProfile обновляет редактируемые поля профиля
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, bio = $4, phone = $5
		WHERE id = $6
	`

	affected, err := r.ExecAffected(
		ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Bio,
		user.Phone,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// CountAll returns the number of registered users
func (r *UserRepository) CountAll(ctx context.Context) (int, error) {
	n, err := r.Count(ctx, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
