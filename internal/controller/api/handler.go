// Package api serves the JSON REST API.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/tutor_market/internal/controller/middleware"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Catalog      *service.CatalogService
	Enrollments  *service.EnrollmentService
	Bookings     *service.BookingService
	Cancellation *service.CancellationService
	Payments     *service.PaymentService
	Accounts     *service.AccountService
}

type Handler struct {
	Deps
	logger *zap.Logger
}

func NewHandler(deps Deps, logger *zap.Logger) *Handler {
	return &Handler{Deps: deps, logger: logger}
}

// Register mounts the API under the given group, usually /api
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/auth/token/", h.obtainToken)
	r.POST("/auth/token/refresh/", h.refreshToken)

	r.GET("/courses/", h.listCourses)
	r.GET("/courses/:id/", h.getCourse)
	r.GET("/tutors/", h.listTutors)
	r.GET("/tutors/:id/", h.getTutor)
	r.GET("/sessions/", h.listSessions)
	r.GET("/sessions/:id/", h.getSession)

	staff := r.Group("", middleware.RequireStaff())
	{
		staff.POST("/courses/", h.createCourse)
		staff.PUT("/courses/:id/", h.updateCourse)
		staff.PATCH("/courses/:id/", h.updateCourse)
		staff.DELETE("/courses/:id/", h.deleteCourse)

		staff.GET("/action-requests/", h.listRequests)
		staff.GET("/action-requests/:id/", h.getRequest)
		staff.POST("/action-requests/approve/", h.approveRequests)
		staff.POST("/action-requests/reject/", h.rejectRequests)
	}

	authed := r.Group("", middleware.RequireUser())
	{
		authed.GET("/enrollments/", h.listEnrollments)
		authed.POST("/enrollments/", h.createEnrollment)
		authed.GET("/enrollments/:id/", h.getEnrollment)
		authed.DELETE("/enrollments/:id/", h.deleteEnrollment)

		authed.GET("/bookings/", h.listBookings)
		authed.POST("/bookings/", h.createBooking)
		authed.GET("/bookings/:id/", h.getBooking)
		authed.DELETE("/bookings/:id/", h.deleteBooking)

		authed.GET("/resources/", h.listResources)
		authed.GET("/resources/:id/", h.getResource)

		authed.GET("/payments/", h.listPayments)
		authed.POST("/payments/create-checkout-session/", h.createCheckoutSession)
		authed.GET("/payments/:id/", h.getPayment)
	}
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

// fail maps service errors to HTTP responses
func (h *Handler) fail(c *gin.Context, err error) {
	var fe service.FieldErrors
	switch {
	case errors.As(err, &fe):
		c.AbortWithStatusJSON(http.StatusBadRequest, fe)
	case service.IsNotFound(err):
		detail(c, http.StatusNotFound, "Not found.")
	case errors.Is(err, service.ErrSessionFull),
		errors.Is(err, service.ErrAlreadyPaid):
		detail(c, http.StatusConflict, service.ErrorMessage(err))
	case errors.Is(err, service.ErrInvalidPayload),
		errors.Is(err, service.ErrFreeCourse),
		errors.Is(err, service.ErrSlugTaken):
		detail(c, http.StatusBadRequest, service.ErrorMessage(err))
	case errors.Is(err, service.ErrInvalidCredentials):
		detail(c, http.StatusUnauthorized, "No active account found with the given credentials")
	case errors.Is(err, service.ErrForbidden):
		detail(c, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, service.ErrGatewayDisabled):
		detail(c, http.StatusServiceUnavailable, service.ErrorMessage(err))
	default:
		h.logger.Error("API handler failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		_ = c.Error(err)
		detail(c, http.StatusInternalServerError, "Internal server error.")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		detail(c, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}
