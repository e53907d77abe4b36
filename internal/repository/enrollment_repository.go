package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentRepository struct {
	*base.Repository
}

func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{Repository: base.NewRepository(pool)}
}

const enrollmentSelect = `
	SELECT e.id, e.student_id, e.course_id, e.created_at,
	       c.id, c.title, c.slug, c.description, c.tutor_id, c.price_cents, c.is_active, c.created_at,
	       t.id, t.user_id, t.bio, t.created_at,
	       tu.id, tu.username, tu.first_name, tu.last_name,
	       su.id, su.username, su.first_name, su.last_name
	FROM enrollments e
	JOIN courses c ON c.id = e.course_id
	JOIN tutors t ON t.id = c.tutor_id
	JOIN users tu ON tu.id = t.user_id
	JOIN users su ON su.id = e.student_id
`

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	var (
		enrollment model.Enrollment
		course     model.Course
		tutor      model.Tutor
		tutorUser  model.User
		student    model.User
	)
	err := row.Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseID,
		&enrollment.CreatedAt,
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
		&tutorUser.ID,
		&tutorUser.Username,
		&tutorUser.FirstName,
		&tutorUser.LastName,
		&student.ID,
		&student.Username,
		&student.FirstName,
		&student.LastName,
	)
	if err != nil {
		return nil, err
	}
	tutor.User = &tutorUser
	course.Tutor = &tutor
	enrollment.Course = &course
	enrollment.Student = &student
	return &enrollment, nil
}

func (r *EnrollmentRepository) list(ctx context.Context, query string, args ...any) ([]*model.Enrollment, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*model.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}

	return enrollments, nil
}

// GetOrCreate returns the (student, course) enrollment, creating it when absent.
// created is true only when this call inserted the row.
func (r *EnrollmentRepository) GetOrCreate(ctx context.Context, studentID, courseID int64) (*model.Enrollment, bool, error) {
	insert := `
		INSERT INTO enrollments (student_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (student_id, course_id) DO NOTHING
		RETURNING id
	`

	created := true
	var id int64
	err := r.QueryRow(ctx, insert, studentID, courseID).Scan(&id)
	if err != nil {
		if !base.IsNotFound(err) {
			return nil, false, fmt.Errorf("insert enrollment: %w", err)
		}
		created = false
	}

	enrollment, err := scanEnrollment(r.QueryRow(ctx,
		enrollmentSelect+` WHERE e.student_id = $1 AND e.course_id = $2`, studentID, courseID))
	if err != nil {
		return nil, false, fmt.Errorf("get enrollment: %w", err)
	}

	return enrollment, created, nil
}

// GetByID получает запись на курс по ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*model.Enrollment, error) {
	enrollment, err := scanEnrollment(r.QueryRow(ctx, enrollmentSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment by id: %w", err)
	}
	return enrollment, nil
}

// ListByStudent получает все записи студента
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.Enrollment, error) {
	enrollments, err := r.list(ctx, enrollmentSelect+` WHERE e.student_id = $1 ORDER BY e.created_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}
	return enrollments, nil
}

// ListRecent получает последние записи на курсы
func (r *EnrollmentRepository) ListRecent(ctx context.Context, limit int) ([]*model.Enrollment, error) {
	enrollments, err := r.list(ctx, enrollmentSelect+` ORDER BY e.created_at DESC, e.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent enrollments: %w", err)
	}
	return enrollments, nil
}

// DeleteForStudent удаляет запись, только если она принадлежит студенту
func (r *EnrollmentRepository) DeleteForStudent(ctx context.Context, id, studentID int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM enrollments WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// CountAll returns the number of enrollments
func (r *EnrollmentRepository) CountAll(ctx context.Context) (int, error) {
	n, err := r.Count(ctx, `SELECT COUNT(*) FROM enrollments`)
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}
