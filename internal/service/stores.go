package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

// Интерфейсы хранилищ, реализуются пакетом repository

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	CountAll(ctx context.Context) (int, error)
}

type TutorStore interface {
	List(ctx context.Context) ([]*model.Tutor, error)
	GetByID(ctx context.Context, id int64) (*model.Tutor, error)
	CountAll(ctx context.Context) (int, error)
}

type CourseStore interface {
	ListActive(ctx context.Context, limit int) ([]*model.Course, error)
	List(ctx context.Context) ([]*model.Course, error)
	GetByID(ctx context.Context, id int64) (*model.Course, error)
	GetBySlug(ctx context.Context, slug string) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id int64) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	CountAll(ctx context.Context) (int, error)
}

type SessionStore interface {
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*model.Session, error)
	List(ctx context.Context, limit int) ([]*model.Session, error)
	CountAll(ctx context.Context) (int, error)
}

type ResourceStore interface {
	ListByCourse(ctx context.Context, courseID int64) ([]*model.Resource, error)
	List(ctx context.Context) ([]*model.Resource, error)
	GetByID(ctx context.Context, id int64) (*model.Resource, error)
}

type EnrollmentStore interface {
	GetOrCreate(ctx context.Context, studentID, courseID int64) (*model.Enrollment, bool, error)
	GetByID(ctx context.Context, id int64) (*model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.Enrollment, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Enrollment, error)
	DeleteForStudent(ctx context.Context, id, studentID int64) error
	CountAll(ctx context.Context) (int, error)
}

type BookingStore interface {
	CreateWithinCapacity(ctx context.Context, studentID, sessionID int64) (*model.Booking, bool, error)
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.Booking, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Booking, error)
	CountAll(ctx context.Context) (int, error)
}

type ActionRequestStore interface {
	GetOrCreatePending(ctx context.Context, requestType string, bookingID, requestedBy int64) (*model.ActionRequest, bool, error)
	GetByID(ctx context.Context, id int64) (*model.ActionRequest, error)
	ListByRequester(ctx context.Context, requestedBy int64, limit int) ([]*model.ActionRequest, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]*model.ActionRequest, error)
	LatestStatusByBooking(ctx context.Context, requestedBy int64) (map[int64]string, error)
	ApproveCancelBooking(ctx context.Context, id, reviewerID int64, comment string, at time.Time) (bool, error)
	Reject(ctx context.Context, id, reviewerID int64, comment string, at time.Time) (bool, error)
}

type PaymentStore interface {
	GetOrCreate(ctx context.Context, payment *model.Payment) (*model.Payment, bool, error)
	GetPaidByEnrollment(ctx context.Context, enrollmentID int64) (*model.Payment, error)
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.Payment, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Payment, error)
	PaidEnrollmentIDs(ctx context.Context, studentID int64) (map[int64]bool, error)
	CountAll(ctx context.Context) (int, error)
}

type SettingsStore interface {
	GetActive(ctx context.Context) (*model.SiteSetting, error)
}
