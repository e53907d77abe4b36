package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(pool)}
}

// booked_count считается подзапросом, чтобы не тянуть GROUP BY по всем колонкам
const sessionSelect = `
	SELECT s.id, s.course_id, s.start_time, s.end_time, s.capacity,
	       (SELECT COUNT(*) FROM bookings b WHERE b.session_id = s.id),
	       c.id, c.title, c.slug, c.price_cents, c.is_active
	FROM sessions s
	JOIN courses c ON c.id = s.course_id
`

func scanSession(row pgx.Row) (*model.Session, error) {
	var session model.Session
	var course model.Course
	err := row.Scan(
		&session.ID,
		&session.CourseID,
		&session.StartTime,
		&session.EndTime,
		&session.Capacity,
		&session.BookedCount,
		&course.ID,
		&course.Title,
		&course.Slug,
		&course.PriceCents,
		&course.IsActive,
	)
	if err != nil {
		return nil, err
	}
	session.Course = &course
	return &session, nil
}

func (r *SessionRepository) list(ctx context.Context, query string, args ...any) ([]*model.Session, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// GetByID получает сессию по ID
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	session, err := scanSession(r.QueryRow(ctx, sessionSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}
	return session, nil
}

// ListByCourse получает сессии курса по времени начала
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID int64) ([]*model.Session, error) {
	sessions, err := r.list(ctx, sessionSelect+` WHERE s.course_id = $1 ORDER BY s.start_time`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list sessions by course: %w", err)
	}
	return sessions, nil
}

// List получает сессии по времени начала, limit <= 0 означает без ограничения
func (r *SessionRepository) List(ctx context.Context, limit int) ([]*model.Session, error) {
	query := sessionSelect + ` ORDER BY s.start_time, s.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	sessions, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// CountAll returns the number of sessions
func (r *SessionRepository) CountAll(ctx context.Context) (int, error) {
	n, err := r.Count(ctx, `SELECT COUNT(*) FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}
