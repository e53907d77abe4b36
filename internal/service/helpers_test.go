package service

import (
	"time"

	"github.com/Freeeeeet/tutor_market/internal/auth"
	"github.com/Freeeeeet/tutor_market/internal/payment"
	"github.com/Freeeeeet/tutor_market/internal/service/servicetest"
	"go.uber.org/zap"
)

type testEnv struct {
	db        *servicetest.DB
	publisher *servicetest.Publisher
	notifier  *servicetest.Notifier
	gateway   *servicetest.Gateway

	catalog      *CatalogService
	enrollments  *EnrollmentService
	bookings     *BookingService
	cancellation *CancellationService
	payments     *PaymentService
	accounts     *AccountService
	dashboard    *DashboardService
}

func newTestEnv(envKeys payment.Keys) *testEnv {
	db := servicetest.NewDB()
	logger := zap.NewNop()
	pub := &servicetest.Publisher{}
	notifier := &servicetest.Notifier{}
	gw := &servicetest.Gateway{}

	issuer := auth.NewIssuer("test-secret-0123456789", 15*time.Minute, time.Hour)

	return &testEnv{
		db:           db,
		publisher:    pub,
		notifier:     notifier,
		gateway:      gw,
		catalog:      NewCatalogService(db.Courses(), db.Tutors(), db.Sessions(), db.Resources(), logger),
		enrollments:  NewEnrollmentService(db.Courses(), db.Enrollments(), logger),
		bookings:     NewBookingService(db.Bookings(), pub, logger),
		cancellation: NewCancellationService(db.Bookings(), db.Requests(), notifier, pub, logger),
		payments:     NewPaymentService(db.Enrollments(), db.Payments(), db.Settings(), gw, envKeys, "usd", pub, logger),
		accounts:     NewAccountService(db.Users(), issuer, logger),
		dashboard: NewDashboardService(db.Users(), db.Tutors(), db.Courses(), db.Sessions(),
			db.Enrollments(), db.Bookings(), db.Payments(), db.Requests()),
	}
}
