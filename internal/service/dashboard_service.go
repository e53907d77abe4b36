package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

const adminRecentLimit = 10

type DashboardService struct {
	userRepo       UserStore
	tutorRepo      TutorStore
	courseRepo     CourseStore
	sessionRepo    SessionStore
	enrollmentRepo EnrollmentStore
	bookingRepo    BookingStore
	paymentRepo    PaymentStore
	requestRepo    ActionRequestStore
}

func NewDashboardService(
	userRepo UserStore,
	tutorRepo TutorStore,
	courseRepo CourseStore,
	sessionRepo SessionStore,
	enrollmentRepo EnrollmentStore,
	bookingRepo BookingStore,
	paymentRepo PaymentStore,
	requestRepo ActionRequestStore,
) *DashboardService {
	return &DashboardService{
		userRepo:       userRepo,
		tutorRepo:      tutorRepo,
		courseRepo:     courseRepo,
		sessionRepo:    sessionRepo,
		enrollmentRepo: enrollmentRepo,
		bookingRepo:    bookingRepo,
		paymentRepo:    paymentRepo,
		requestRepo:    requestRepo,
	}
}

type StudentDashboard struct {
	Enrollments       []*model.Enrollment
	Bookings          []*model.Booking
	PaidEnrollmentIDs map[int64]bool
	Requests          []*model.ActionRequest
}

type Counts struct {
	Users       int
	Tutors      int
	Courses     int
	Sessions    int
	Enrollments int
	Bookings    int
	Payments    int
}

type AdminDashboard struct {
	Counts            Counts
	PendingRequests   []*model.ActionRequest
	RecentEnrollments []*model.Enrollment
	RecentBookings    []*model.Booking
	RecentPayments    []*model.Payment
}

// Student собирает личный кабинет студента
func (s *DashboardService) Student(ctx context.Context, studentID int64) (*StudentDashboard, error) {
	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	bookings, err := s.bookingRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	statuses, err := s.requestRepo.LatestStatusByBooking(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("latest request statuses: %w", err)
	}
	for _, b := range bookings {
		b.RequestStatus = statuses[b.ID]
	}

	paid, err := s.paymentRepo.PaidEnrollmentIDs(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("paid enrollments: %w", err)
	}

	requests, err := s.requestRepo.ListByRequester(ctx, studentID, StudentRequestLimit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	return &StudentDashboard{
		Enrollments:       enrollments,
		Bookings:          bookings,
		PaidEnrollmentIDs: paid,
		Requests:          requests,
	}, nil
}

// Admin собирает панель администратора, доступна только staff
func (s *DashboardService) Admin(ctx context.Context, viewer *model.User) (*AdminDashboard, error) {
	if viewer == nil || !viewer.IsStaff {
		return nil, ErrForbidden
	}

	var (
		d   AdminDashboard
		err error
	)

	counters := []struct {
		name string
		dst  *int
		fn   func(context.Context) (int, error)
	}{
		{"users", &d.Counts.Users, s.userRepo.CountAll},
		{"tutors", &d.Counts.Tutors, s.tutorRepo.CountAll},
		{"courses", &d.Counts.Courses, s.courseRepo.CountAll},
		{"sessions", &d.Counts.Sessions, s.sessionRepo.CountAll},
		{"enrollments", &d.Counts.Enrollments, s.enrollmentRepo.CountAll},
		{"bookings", &d.Counts.Bookings, s.bookingRepo.CountAll},
		{"payments", &d.Counts.Payments, s.paymentRepo.CountAll},
	}
	for _, c := range counters {
		if *c.dst, err = c.fn(ctx); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
	}

	if d.PendingRequests, err = s.requestRepo.ListByStatus(ctx, model.RequestStatusPending, adminRecentLimit); err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	if d.RecentEnrollments, err = s.enrollmentRepo.ListRecent(ctx, adminRecentLimit); err != nil {
		return nil, fmt.Errorf("list recent enrollments: %w", err)
	}
	if d.RecentBookings, err = s.bookingRepo.ListRecent(ctx, adminRecentLimit); err != nil {
		return nil, fmt.Errorf("list recent bookings: %w", err)
	}
	if d.RecentPayments, err = s.paymentRepo.ListRecent(ctx, adminRecentLimit); err != nil {
		return nil, fmt.Errorf("list recent payments: %w", err)
	}

	return &d, nil
}
