package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActionRequestRepository struct {
	*base.Repository
}

// pendingInsertAttempts bounds retries when a pending request is reviewed
// between the insert and the read
const pendingInsertAttempts = 3

func NewActionRequestRepository(pool *pgxpool.Pool) *ActionRequestRepository {
	return &ActionRequestRepository{Repository: base.NewRepository(pool)}
}

// Бронирование могло быть удалено при одобрении, поэтому LEFT JOIN
const actionRequestSelect = `
	SELECT ar.id, ar.request_type, ar.status, ar.booking_id, ar.requested_by, ar.reviewed_by,
	       ar.review_comment, ar.created_at, ar.reviewed_at,
	       ru.id, ru.username, ru.first_name, ru.last_name,
	       b.id, s.id, s.start_time, c.title, c.slug
	FROM action_requests ar
	JOIN users ru ON ru.id = ar.requested_by
	LEFT JOIN bookings b ON b.id = ar.booking_id
	LEFT JOIN sessions s ON s.id = b.session_id
	LEFT JOIN courses c ON c.id = s.course_id
`

func scanActionRequest(row pgx.Row) (*model.ActionRequest, error) {
	var (
		req         model.ActionRequest
		requester   model.User
		bookingID   *int64
		sessionID   *int64
		start       *time.Time
		courseTitle *string
		courseSlug  *string
	)
	err := row.Scan(
		&req.ID,
		&req.RequestType,
		&req.Status,
		&req.BookingID,
		&req.RequestedBy,
		&req.ReviewedBy,
		&req.ReviewComment,
		&req.CreatedAt,
		&req.ReviewedAt,
		&requester.ID,
		&requester.Username,
		&requester.FirstName,
		&requester.LastName,
		&bookingID,
		&sessionID,
		&start,
		&courseTitle,
		&courseSlug,
	)
	if err != nil {
		return nil, err
	}
	req.Requester = &requester

	if bookingID != nil && sessionID != nil && start != nil {
		course := &model.Course{}
		if courseTitle != nil {
			course.Title = *courseTitle
		}
		if courseSlug != nil {
			course.Slug = *courseSlug
		}
		req.Booking = &model.Booking{
			ID:        *bookingID,
			StudentID: req.RequestedBy,
			SessionID: *sessionID,
			Session: &model.Session{
				ID:        *sessionID,
				StartTime: *start,
				Course:    course,
			},
		}
	}

	return &req, nil
}

func (r *ActionRequestRepository) list(ctx context.Context, query string, args ...any) ([]*model.ActionRequest, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*model.ActionRequest
	for rows.Next() {
		req, err := scanActionRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return requests, nil
}

// GetOrCreatePending returns the pending request of this type for the booking
// and requester, creating one when none exists.
//
// The insert and the read are separate statements; when the pending row is
// reviewed in between, the read finds nothing and the insert is retried.
func (r *ActionRequestRepository) GetOrCreatePending(ctx context.Context, requestType string, bookingID, requestedBy int64) (*model.ActionRequest, bool, error) {
	insert := `
		INSERT INTO action_requests (request_type, booking_id, requested_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_type, booking_id, requested_by) WHERE status = 'pending' DO NOTHING
		RETURNING id
	`

	for attempt := 0; attempt < pendingInsertAttempts; attempt++ {
		created := true
		var id int64
		err := r.QueryRow(ctx, insert, requestType, bookingID, requestedBy).Scan(&id)
		if err != nil {
			if !base.IsNotFound(err) {
				return nil, false, fmt.Errorf("create action request: %w", err)
			}
			created = false
		}

		req, err := scanActionRequest(r.QueryRow(ctx, actionRequestSelect+`
			WHERE ar.request_type = $1 AND ar.booking_id = $2 AND ar.requested_by = $3 AND ar.status = $4
		`, requestType, bookingID, requestedBy, model.RequestStatusPending))
		if err == nil {
			return req, created, nil
		}
		if !base.IsNotFound(err) {
			return nil, false, fmt.Errorf("get pending request: %w", err)
		}
	}

	return nil, false, fmt.Errorf("get pending request: %w", ErrNotFound)
}

// GetByID получает заявку по ID
func (r *ActionRequestRepository) GetByID(ctx context.Context, id int64) (*model.ActionRequest, error) {
	req, err := scanActionRequest(r.QueryRow(ctx, actionRequestSelect+` WHERE ar.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get action request: %w", err)
	}
	return req, nil
}

// ListByRequester получает последние заявки пользователя
func (r *ActionRequestRepository) ListByRequester(ctx context.Context, requestedBy int64, limit int) ([]*model.ActionRequest, error) {
	requests, err := r.list(ctx, actionRequestSelect+`
		WHERE ar.requested_by = $1
		ORDER BY ar.created_at DESC, ar.id DESC
		LIMIT $2
	`, requestedBy, limit)
	if err != nil {
		return nil, fmt.Errorf("get requester requests: %w", err)
	}
	return requests, nil
}

// ListByStatus получает заявки по статусу, пустой статус означает все заявки
func (r *ActionRequestRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*model.ActionRequest, error) {
	requests, err := r.list(ctx, actionRequestSelect+`
		WHERE ($1 = '' OR ar.status = $1)
		ORDER BY ar.created_at DESC, ar.id DESC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("get requests by status: %w", err)
	}
	return requests, nil
}

// LatestStatusByBooking maps each of the requester's bookings to the status of
// its most recent request.
func (r *ActionRequestRepository) LatestStatusByBooking(ctx context.Context, requestedBy int64) (map[int64]string, error) {
	rows, err := r.Query(ctx, `
		SELECT DISTINCT ON (booking_id) booking_id, status
		FROM action_requests
		WHERE requested_by = $1 AND booking_id IS NOT NULL
		ORDER BY booking_id, created_at DESC, id DESC
	`, requestedBy)
	if err != nil {
		return nil, fmt.Errorf("get latest request statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[int64]string)
	for rows.Next() {
		var bookingID int64
		var status string
		if err := rows.Scan(&bookingID, &status); err != nil {
			return nil, fmt.Errorf("scan request status: %w", err)
		}
		statuses[bookingID] = status
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request statuses: %w", err)
	}

	return statuses, nil
}

// ApproveCancelBooking deletes the referenced booking and marks the request
// approved. Returns false when the request is missing, not pending or not a
// cancellation.
func (r *ActionRequestRepository) ApproveCancelBooking(ctx context.Context, id, reviewerID int64, comment string, at time.Time) (bool, error) {
	applied := false

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var bookingID *int64
		err := tx.QueryRow(ctx, `
			SELECT booking_id
			FROM action_requests
			WHERE id = $1 AND status = $2 AND request_type = $3
			FOR UPDATE
		`, id, model.RequestStatusPending, model.RequestTypeCancelBooking).Scan(&bookingID)
		if err != nil {
			if base.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("lock request: %w", err)
		}

		// Бронирование может быть уже удалено - это не ошибка
		if bookingID != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, *bookingID); err != nil {
				return fmt.Errorf("delete booking: %w", err)
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE action_requests
			SET status = $1, reviewed_by = $2, reviewed_at = $3, review_comment = $4
			WHERE id = $5
		`, model.RequestStatusApproved, reviewerID, at, comment, id)
		if err != nil {
			return fmt.Errorf("update request status: %w", err)
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

// Reject marks a pending request rejected. Returns false when it was not pending.
func (r *ActionRequestRepository) Reject(ctx context.Context, id, reviewerID int64, comment string, at time.Time) (bool, error) {
	affected, err := r.ExecAffected(ctx, `
		UPDATE action_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3, review_comment = $4
		WHERE id = $5 AND status = $6
	`, model.RequestStatusRejected, reviewerID, at, comment, id, model.RequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("reject request: %w", err)
	}

	return affected > 0, nil
}
