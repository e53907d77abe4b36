package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CourseRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewCourseRepository(pool *pgxpool.Pool, logger *zap.Logger) *CourseRepository {
	return &CourseRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

const courseSelect = `
	SELECT c.id, c.title, c.slug, c.description, c.tutor_id, c.price_cents, c.is_active, c.created_at,
	       t.id, t.user_id, t.bio, t.created_at,
	       u.id, u.username, u.first_name, u.last_name
	FROM courses c
	JOIN tutors t ON t.id = c.tutor_id
	JOIN users u ON u.id = t.user_id
`

func scanCourse(row pgx.Row) (*model.Course, error) {
	var course model.Course
	var tutor model.Tutor
	var user model.User
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Slug,
		&course.Description,
		&course.TutorID,
		&course.PriceCents,
		&course.IsActive,
		&course.CreatedAt,
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
	course.Tutor = &tutor
	return &course, nil
}

func (r *CourseRepository) list(ctx context.Context, query string, args ...any) ([]*model.Course, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	return courses, nil
}

// ListActive получает активные курсы, limit <= 0 означает без ограничения
func (r *CourseRepository) ListActive(ctx context.Context, limit int) ([]*model.Course, error) {
	query := courseSelect + ` WHERE c.is_active = true ORDER BY c.created_at DESC, c.id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	courses, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// List получает все курсы, включая неактивные
func (r *CourseRepository) List(ctx context.Context) ([]*model.Course, error) {
	courses, err := r.list(ctx, courseSelect+` ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// GetByID получает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	course, err := scanCourse(r.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}
	return course, nil
}

// GetBySlug получает курс по slug
func (r *CourseRepository) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	course, err := scanCourse(r.QueryRow(ctx, courseSelect+` WHERE c.slug = $1`, slug))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by slug: %w", err)
	}
	return course, nil
}

// Create создаёт новый курс
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (title, slug, description, tutor_id, price_cents, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		course.Title,
		course.Slug,
		course.Description,
		course.TutorID,
		course.PriceCents,
		course.IsActive,
	).Scan(&course.ID, &course.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error("Failed to insert course",
			zap.String("slug", course.Slug),
			zap.Error(err))
		return fmt.Errorf("create course: %w", err)
	}

	r.logger.Info("Course created",
		zap.Int64("course_id", course.ID),
		zap.String("slug", course.Slug))

	return nil
}

// Update обновляет курс
func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	query := `
		UPDATE courses
		SET title = $1, slug = $2, description = $3, tutor_id = $4, price_cents = $5, is_active = $6
		WHERE id = $7
	`

	affected, err := r.ExecAffected(
		ctx, query,
		course.Title,
		course.Slug,
		course.Description,
		course.TutorID,
		course.PriceCents,
		course.IsActive,
		course.ID,
	)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update course: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete удаляет курс
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// SlugExists проверяет, занят ли slug
func (r *CourseRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM courses WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// CountAll returns the number of courses
func (r *CourseRepository) CountAll(ctx context.Context) (int, error) {
	n, err := r.Count(ctx, `SELECT COUNT(*) FROM courses`)
	if err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}
