package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/auth"
	"github.com/Freeeeeet/tutor_market/internal/controller/api"
	"github.com/Freeeeeet/tutor_market/internal/controller/pages"
	"github.com/Freeeeeet/tutor_market/internal/payment"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/Freeeeeet/tutor_market/internal/service/servicetest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEngine(t *testing.T) (*gin.Engine, *servicetest.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := servicetest.NewDB()
	logger := zap.NewNop()
	pub := &servicetest.Publisher{}
	issuer := auth.NewIssuer("test-secret-0123456789", time.Minute, time.Hour)

	catalog := service.NewCatalogService(db.Courses(), db.Tutors(), db.Sessions(), db.Resources(), logger)
	enrollments := service.NewEnrollmentService(db.Courses(), db.Enrollments(), logger)
	bookings := service.NewBookingService(db.Bookings(), pub, logger)
	cancellation := service.NewCancellationService(db.Bookings(), db.Requests(), &servicetest.Notifier{}, pub, logger)
	payments := service.NewPaymentService(db.Enrollments(), db.Payments(), db.Settings(),
		&servicetest.Gateway{}, payment.Keys{}, "usd", pub, logger)
	accounts := service.NewAccountService(db.Users(), issuer, logger)
	dashboard := service.NewDashboardService(db.Users(), db.Tutors(), db.Courses(), db.Sessions(),
		db.Enrollments(), db.Bookings(), db.Payments(), db.Requests())

	pagesHandler := pages.NewHandler(pages.Deps{
		Catalog:      catalog,
		Enrollments:  enrollments,
		Bookings:     bookings,
		Cancellation: cancellation,
		Payments:     payments,
		Accounts:     accounts,
		Dashboard:    dashboard,
	}, pages.Options{}, logger)
	apiHandler := api.NewHandler(api.Deps{
		Catalog:      catalog,
		Enrollments:  enrollments,
		Bookings:     bookings,
		Cancellation: cancellation,
		Payments:     payments,
		Accounts:     accounts,
	}, logger)

	engine, err := NewHTTPController(pagesHandler, apiHandler, accounts, logger).Engine()
	require.NoError(t, err)
	return engine, db
}

func TestEngine_Routes(t *testing.T) {
	engine, db := newEngine(t)
	db.AddCourse("Algebra", "algebra", 0, true)

	cases := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/healthz", http.StatusOK, "application/json"},
		{"/", http.StatusOK, "text/html"},
		{"/api/courses/", http.StatusOK, "application/json"},
		{"/api/unknown/", http.StatusNotFound, "application/json"},
		{"/unknown/", http.StatusNotFound, "text/html"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tc.contentType)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}
