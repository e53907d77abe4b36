package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TutorRepository struct {
	*base.Repository
}

func NewTutorRepository(pool *pgxpool.Pool) *TutorRepository {
	return &TutorRepository{Repository: base.NewRepository(pool)}
}

const tutorSelect = `
	SELECT t.id, t.user_id, t.bio, t.created_at,
	       u.id, u.username, u.first_name, u.last_name
	FROM tutors t
	JOIN users u ON u.id = t.user_id
`

func scanTutor(row pgx.Row) (*model.Tutor, error) {
	var tutor model.Tutor
	var user model.User
	err := row.Scan(
		&tutor.ID,
		&tutor.UserID,
		&tutor.Bio,
		&tutor.CreatedAt,
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
	)
	if err != nil {
		return nil, err
	}
	tutor.User = &user
	return &tutor, nil
}

// List получает всех репетиторов вместе с пользователями
func (r *TutorRepository) List(ctx context.Context) ([]*model.Tutor, error) {
	rows, err := r.Query(ctx, tutorSelect+` ORDER BY u.first_name, u.last_name, u.username`)
	if err != nil {
		return nil, fmt.Errorf("list tutors: %w", err)
	}
	defer rows.Close()

	var tutors []*model.Tutor
	for rows.Next() {
		tutor, err := scanTutor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tutor: %w", err)
		}
		tutors = append(tutors, tutor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tutors: %w", err)
	}

	return tutors, nil
}

// GetByID получает репетитора по ID
func (r *TutorRepository) GetByID(ctx context.Context, id int64) (*model.Tutor, error) {
	tutor, err := scanTutor(r.QueryRow(ctx, tutorSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutor by id: %w", err)
	}
	return tutor, nil
}

// CountAll returns the number of tutors
func (r *TutorRepository) CountAll(ctx context.Context) (int, error) {
	n, err := r.Count(ctx, `SELECT COUNT(*) FROM tutors`)
	if err != nil {
		return 0, fmt.Errorf("count tutors: %w", err)
	}
	return n, nil
}
