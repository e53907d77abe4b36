package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/events"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"go.uber.org/zap"
)

type BookingService struct {
	bookingRepo BookingStore
	publisher   events.Publisher
	logger      *zap.Logger
}

func NewBookingService(bookingRepo BookingStore, publisher events.Publisher, logger *zap.Logger) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

type bookingEvent struct {
	BookingID int64 `json:"booking_id"`
	StudentID int64 `json:"student_id"`
	SessionID int64 `json:"session_id"`
}

// Book бронирует место на сессии.
// Существующая бронь возвращается с created=false, переполненная сессия даёт ErrSessionFull.
func (s *BookingService) Book(ctx context.Context, studentID, sessionID int64) (*model.Booking, bool, error) {
	booking, created, err := s.bookingRepo.CreateWithinCapacity(ctx, studentID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, false, ErrSessionNotFound
		case errors.Is(err, repository.ErrCapacityReached):
			s.logger.Info("Booking rejected, session full",
				zap.Int64("student_id", studentID),
				zap.Int64("session_id", sessionID))
			return nil, false, ErrSessionFull
		}
		return nil, false, fmt.Errorf("create booking: %w", err)
	}

	if created {
		s.logger.Info("Session booked",
			zap.Int64("booking_id", booking.ID),
			zap.Int64("student_id", studentID),
			zap.Int64("session_id", sessionID))

		publish(ctx, s.publisher, s.logger, events.BookingCreated, bookingEvent{
			BookingID: booking.ID,
			StudentID: studentID,
			SessionID: sessionID,
		})
	}

	return booking, created, nil
}

// ForStudent returns a booking owned by the student
func (s *BookingService) ForStudent(ctx context.Context, studentID, bookingID int64) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil || booking.StudentID != studentID {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) ListForStudent(ctx context.Context, studentID int64) ([]*model.Booking, error) {
	bookings, err := s.bookingRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}
