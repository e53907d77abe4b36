package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/events"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/notify"
	"go.uber.org/zap"
)

const (
	StudentRequestLimit = 25
	requestListLimit    = 200
)

// CancellationService runs the booking cancellation approval workflow
type CancellationService struct {
	bookingRepo BookingStore
	requestRepo ActionRequestStore
	notifier    notify.Notifier
	publisher   events.Publisher
	logger      *zap.Logger
	now         func() time.Time
}

func NewCancellationService(
	bookingRepo BookingStore,
	requestRepo ActionRequestStore,
	notifier notify.Notifier,
	publisher events.Publisher,
	logger *zap.Logger,
) *CancellationService {
	return &CancellationService{
		bookingRepo: bookingRepo,
		requestRepo: requestRepo,
		notifier:    notifier,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

type requestEvent struct {
	RequestID  int64  `json:"request_id"`
	BookingID  *int64 `json:"booking_id"`
	StudentID  int64  `json:"student_id"`
	ReviewerID *int64 `json:"reviewer_id,omitempty"`
}

// BatchResult summarises a bulk review
type BatchResult struct {
	Processed int
	Skipped   int
}

// RequestCancellation создаёт запрос на отмену брони студента.
// Пока есть ожидающий запрос, повторный вызов возвращает его.
func (s *CancellationService) RequestCancellation(ctx context.Context, studentID, bookingID int64) (*model.ActionRequest, bool, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, false, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil || booking.StudentID != studentID {
		return nil, false, ErrBookingNotFound
	}

	req, created, err := s.requestRepo.GetOrCreatePending(ctx, model.RequestTypeCancelBooking, bookingID, studentID)
	if err != nil {
		return nil, false, fmt.Errorf("create cancellation request: %w", err)
	}
	if !created {
		return req, false, nil
	}

	s.logger.Info("Cancellation requested",
		zap.Int64("request_id", req.ID),
		zap.Int64("booking_id", bookingID),
		zap.Int64("student_id", studentID))

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), outboundTimeout)
	if err := s.notifier.CancellationRequested(nctx, req, booking); err != nil {
		s.logger.Warn("Failed to notify admins about cancellation request",
			zap.Int64("request_id", req.ID),
			zap.Error(err))
	}
	cancel()

	publish(ctx, s.publisher, s.logger, events.CancellationRequested, requestEvent{
		RequestID: req.ID,
		BookingID: req.BookingID,
		StudentID: studentID,
	})

	return req, true, nil
}

// Approve approves pending cancel requests and deletes their bookings.
// Ids that are missing or already reviewed are skipped.
func (s *CancellationService) Approve(ctx context.Context, reviewer *model.User, ids []int64, comment string) (BatchResult, error) {
	return s.review(ctx, reviewer, ids, comment, true)
}

// Reject rejects pending requests, bookings stay in place
func (s *CancellationService) Reject(ctx context.Context, reviewer *model.User, ids []int64, comment string) (BatchResult, error) {
	return s.review(ctx, reviewer, ids, comment, false)
}

func (s *CancellationService) review(ctx context.Context, reviewer *model.User, ids []int64, comment string, approve bool) (BatchResult, error) {
	var result BatchResult
	if reviewer == nil || !reviewer.IsStaff {
		return result, ErrForbidden
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		req, err := s.requestRepo.GetByID(ctx, id)
		if err != nil {
			return result, fmt.Errorf("get request %d: %w", id, err)
		}
		if req == nil || !req.IsPending() {
			result.Skipped++
			continue
		}

		var (
			ok  bool
			key string
		)
		at := s.now()
		switch {
		case approve && req.RequestType == model.RequestTypeCancelBooking:
			ok, err = s.requestRepo.ApproveCancelBooking(ctx, id, reviewer.ID, comment, at)
			key = events.CancellationApproved
		case approve:
			// неизвестный тип запроса не одобряем
			result.Skipped++
			continue
		default:
			ok, err = s.requestRepo.Reject(ctx, id, reviewer.ID, comment, at)
			key = events.CancellationRejected
		}
		if err != nil {
			return result, fmt.Errorf("review request %d: %w", id, err)
		}
		if !ok {
			result.Skipped++
			continue
		}

		result.Processed++
		s.logger.Info("Action request reviewed",
			zap.Int64("request_id", id),
			zap.Int64("reviewer_id", reviewer.ID),
			zap.Bool("approved", approve))

		reviewerID := reviewer.ID
		publish(ctx, s.publisher, s.logger, key, requestEvent{
			RequestID:  id,
			BookingID:  req.BookingID,
			StudentID:  req.RequestedBy,
			ReviewerID: &reviewerID,
		})
	}

	return result, nil
}

// List returns requests filtered by status, an empty status means all
func (s *CancellationService) List(ctx context.Context, status string) ([]*model.ActionRequest, error) {
	switch status {
	case "", model.RequestStatusPending, model.RequestStatusApproved, model.RequestStatusRejected:
	default:
		return nil, ErrInvalidPayload
	}

	reqs, err := s.requestRepo.ListByStatus(ctx, status, requestListLimit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

func (s *CancellationService) Get(ctx context.Context, id int64) (*model.ActionRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// ForStudent returns the latest requests made by the student
func (s *CancellationService) ForStudent(ctx context.Context, studentID int64) ([]*model.ActionRequest, error) {
	reqs, err := s.requestRepo.ListByRequester(ctx, studentID, StudentRequestLimit)
	if err != nil {
		return nil, fmt.Errorf("list student requests: %w", err)
	}
	return reqs, nil
}
