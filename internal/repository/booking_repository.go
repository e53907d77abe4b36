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

type BookingRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewBookingRepository(pool *pgxpool.Pool, logger *zap.Logger) *BookingRepository {
	return &BookingRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

const bookingSelect = `
	SELECT b.id, b.student_id, b.session_id, b.created_at,
	       s.id, s.course_id, s.start_time, s.end_time, s.capacity,
	       c.id, c.title, c.slug, c.price_cents, c.is_active,
	       u.id, u.username, u.first_name, u.last_name
	FROM bookings b
	JOIN sessions s ON s.id = b.session_id
	JOIN courses c ON c.id = s.course_id
	JOIN users u ON u.id = b.student_id
`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		booking model.Booking
		session model.Session
		course  model.Course
		student model.User
	)
	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.SessionID,
		&booking.CreatedAt,
		&session.ID,
		&session.CourseID,
		&session.StartTime,
		&session.EndTime,
		&session.Capacity,
		&course.ID,
		&course.Title,
		&course.Slug,
		&course.PriceCents,
		&course.IsActive,
		&student.ID,
		&student.Username,
		&student.FirstName,
		&student.LastName,
	)
	if err != nil {
		return nil, err
	}
	session.Course = &course
	booking.Session = &session
	booking.Student = &student
	return &booking, nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

// CreateWithinCapacity books a seat for the student unless the session is full.
//
// The session row is locked for the duration of the transaction, so the
// count and the insert see the same set of bookings. An existing
// (student, session) booking is returned with created=false.
func (r *BookingRepository) CreateWithinCapacity(ctx context.Context, studentID, sessionID int64) (*model.Booking, bool, error) {
	var booking *model.Booking
	created := false

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var capacity int
		err := tx.QueryRow(ctx, `SELECT capacity FROM sessions WHERE id = $1 FOR UPDATE`, sessionID).Scan(&capacity)
		if err != nil {
			if base.IsNotFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("lock session: %w", err)
		}

		existing, err := scanBooking(tx.QueryRow(ctx,
			bookingSelect+` WHERE b.student_id = $1 AND b.session_id = $2`, studentID, sessionID))
		if err == nil {
			booking = existing
			return nil
		}
		if !base.IsNotFound(err) {
			return fmt.Errorf("get existing booking: %w", err)
		}

		var count int
		err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE session_id = $1`, sessionID).Scan(&count)
		if err != nil {
			return fmt.Errorf("count bookings: %w", err)
		}

		if count >= capacity {
			r.logger.Debug("Session capacity reached",
				zap.Int64("session_id", sessionID),
				zap.Int("capacity", capacity),
				zap.Int("booked", count))
			return ErrCapacityReached
		}

		var id int64
		err = tx.QueryRow(ctx, `
			INSERT INTO bookings (student_id, session_id)
			VALUES ($1, $2)
			RETURNING id
		`, studentID, sessionID).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		booking, err = scanBooking(tx.QueryRow(ctx, bookingSelect+` WHERE b.id = $1`, id))
		if err != nil {
			return fmt.Errorf("reload booking: %w", err)
		}
		booking.Session.BookedCount = count + 1
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return booking, created, nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := scanBooking(r.QueryRow(ctx, bookingSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return booking, nil
}

// ListByStudent получает все бронирования студента
func (r *BookingRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.Booking, error) {
	bookings, err := r.list(ctx, bookingSelect+` WHERE b.student_id = $1 ORDER BY s.start_time`, studentID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by student: %w", err)
	}
	return bookings, nil
}

// ListRecent получает последние бронирования
func (r *BookingRepository) ListRecent(ctx context.Context, limit int) ([]*model.Booking, error) {
	bookings, err := r.list(ctx, bookingSelect+` ORDER BY b.created_at DESC, b.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent bookings: %w", err)
	}
	return bookings, nil
}

// CountAll returns the number of bookings
func (r *BookingRepository) CountAll(ctx context.Context) (int, error) {
	n, err := r.Count(ctx, `SELECT COUNT(*) FROM bookings`)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}
