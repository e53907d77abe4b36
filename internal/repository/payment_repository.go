package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	*base.Repository
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{Repository: base.NewRepository(pool)}
}

const paymentSelect = `
	SELECT p.id, p.enrollment_id, p.amount_cents, p.currency, p.external_ref, p.status, p.created_at,
	       e.id, e.student_id, e.course_id,
	       c.id, c.title, c.slug,
	       u.id, u.username, u.first_name, u.last_name
	FROM payments p
	JOIN enrollments e ON e.id = p.enrollment_id
	JOIN courses c ON c.id = e.course_id
	JOIN users u ON u.id = e.student_id
`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var (
		payment    model.Payment
		enrollment model.Enrollment
		course     model.Course
		student    model.User
	)
	err := row.Scan(
		&payment.ID,
		&payment.EnrollmentID,
		&payment.AmountCents,
		&payment.Currency,
		&payment.ExternalRef,
		&payment.Status,
		&payment.CreatedAt,
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseID,
		&course.ID,
		&course.Title,
		&course.Slug,
		&student.ID,
		&student.Username,
		&student.FirstName,
		&student.LastName,
	)
	if err != nil {
		return nil, err
	}
	enrollment.Course = &course
	enrollment.Student = &student
	payment.Enrollment = &enrollment
	return &payment, nil
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]*model.Payment, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}

// GetOrCreate inserts the payment unless one with the same external reference
// exists, and returns the stored row either way.
func (r *PaymentRepository) GetOrCreate(ctx context.Context, payment *model.Payment) (*model.Payment, bool, error) {
	insert := `
		INSERT INTO payments (enrollment_id, amount_cents, currency, external_ref, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_ref) DO NOTHING
		RETURNING id
	`

	created := true
	var id int64
	err := r.QueryRow(
		ctx, insert,
		payment.EnrollmentID,
		payment.AmountCents,
		payment.Currency,
		payment.ExternalRef,
		payment.Status,
	).Scan(&id)
	if err != nil {
		if !base.IsNotFound(err) {
			return nil, false, fmt.Errorf("create payment: %w", err)
		}
		created = false
	}

	stored, err := scanPayment(r.QueryRow(ctx, paymentSelect+` WHERE p.external_ref = $1`, payment.ExternalRef))
	if err != nil {
		return nil, false, fmt.Errorf("get payment by ref: %w", err)
	}

	return stored, created, nil
}

// GetPaidByEnrollment получает оплаченный платёж по записи, если он есть
func (r *PaymentRepository) GetPaidByEnrollment(ctx context.Context, enrollmentID int64) (*model.Payment, error) {
	payment, err := scanPayment(r.QueryRow(ctx, paymentSelect+`
		WHERE p.enrollment_id = $1 AND p.status = $2
		ORDER BY p.created_at
		LIMIT 1
	`, enrollmentID, model.PaymentStatusPaid))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get paid payment: %w", err)
	}
	return payment, nil
}

// GetByID получает платёж по ID
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	payment, err := scanPayment(r.QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}
	return payment, nil
}

// ListByStudent получает платежи студента
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.Payment, error) {
	payments, err := r.list(ctx, paymentSelect+` WHERE e.student_id = $1 ORDER BY p.created_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list payments by student: %w", err)
	}
	return payments, nil
}

// ListRecent получает последние платежи
func (r *PaymentRepository) ListRecent(ctx context.Context, limit int) ([]*model.Payment, error) {
	payments, err := r.list(ctx, paymentSelect+` ORDER BY p.created_at DESC, p.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent payments: %w", err)
	}
	return payments, nil
}

// PaidEnrollmentIDs returns the set of the student's enrollments holding a paid payment
func (r *PaymentRepository) PaidEnrollmentIDs(ctx context.Context, studentID int64) (map[int64]bool, error) {
	rows, err := r.Query(ctx, `
		SELECT DISTINCT p.enrollment_id
		FROM payments p
		JOIN enrollments e ON e.id = p.enrollment_id
		WHERE e.student_id = $1 AND p.status = $2
	`, studentID, model.PaymentStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("get paid enrollments: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan paid enrollments: %w", err)
	}

	paid := make(map[int64]bool, len(ids))
	for _, id := range ids {
		paid[id] = true
	}
	return paid, nil
}

// CountAll returns the number of payments
func (r *PaymentRepository) CountAll(ctx context.Context) (int, error) {
	n, err := r.Count(ctx, `SELECT COUNT(*) FROM payments`)
	if err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return n, nil
}
