// Package pages serves the server-rendered site and its form actions.
package pages

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/controller/middleware"
	"github.com/Freeeeeet/tutor_market/internal/model"
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
	Dashboard    *service.DashboardService
}

type Options struct {
	CookieSecure bool
	SessionTTL   time.Duration
}

type Handler struct {
	Deps
	opts   Options
	logger *zap.Logger
}

func NewHandler(deps Deps, opts Options, logger *zap.Logger) *Handler {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	return &Handler{
		Deps:   deps,
		opts:   opts,
		logger: logger,
	}
}

// Register подключает страницы и действия к роутеру
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.home)
	r.GET("/courses/", h.courses)
	r.GET("/courses/:slug/", h.courseDetail)
	r.GET("/tutors/", h.tutors)
	r.GET("/dashboard/", h.dashboard)
	r.GET("/bookings/", h.bookings)
	r.GET("/checkout/", h.checkout)
	r.POST("/checkout/", h.checkoutSubmit)
	r.GET("/checkout/success/", h.static("checkout_success.html", "Payment received"))
	r.GET("/checkout/cancel/", h.checkoutCancel)
	r.GET("/privacy/", h.static("privacy.html", "Privacy"))
	r.GET("/terms/", h.static("terms.html", "Terms"))
	r.GET("/contact/", h.static("contact.html", "Contact"))
	r.GET("/profile/", h.profile)
	r.POST("/profile/", h.profileSubmit)
	r.GET("/admin-dashboard/", h.adminDashboard)

	r.GET("/auth/login/", h.login)
	r.POST("/auth/login/", h.loginSubmit)
	r.GET("/auth/register/", h.register)
	r.POST("/auth/register/", h.registerSubmit)
	r.GET("/auth/logout/confirm/", h.logoutConfirm)
	r.POST("/auth/logout/perform/", h.logoutPerform)
	r.GET("/auth/logout/", h.logout)
	r.POST("/auth/logout/", h.logout)

	r.POST("/enroll/:slug/", h.enroll)
	r.POST("/book/:session_id/", h.book)
	r.GET("/pay/:enrollment_id/", h.pay)
	r.POST("/pay/:enrollment_id/", h.pay)
	r.POST("/cancel-booking/:booking_id/", h.cancelBooking)
	r.POST("/admin/requests/approve/", h.approveRequests)
	r.POST("/admin/requests/reject/", h.rejectRequests)
}

// NoRoute renders the not found page
func (h *Handler) NoRoute(c *gin.Context) {
	h.notFound(c)
}

func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = middleware.CurrentUser(c)
	data["Flashes"] = popFlashes(c)
	c.HTML(status, name, data)
}

func (h *Handler) static(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, http.StatusOK, name, gin.H{"Title": title})
	}
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error.html", gin.H{
		"Title":   "Not found",
		"Status":  http.StatusNotFound,
		"Message": "The page you are looking for does not exist.",
	})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.Error("Page handler failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err))
	_ = c.Error(err)
	h.render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Error",
		"Status":  http.StatusInternalServerError,
		"Message": service.ErrorMessage(err),
	})
}

// requireUser redirects anonymous visitors to the login page
func (h *Handler) requireUser(c *gin.Context) (*model.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/auth/login/?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		return nil, false
	}
	return user, true
}

// fail shows a known business error as a flash message and redirects.
// Unknown errors render the error page.
func (h *Handler) fail(c *gin.Context, err error, to string) {
	if service.IsNotFound(err) {
		h.notFound(c)
		return
	}
	if isBusinessError(err) {
		addFlash(c, levelError, service.ErrorMessage(err))
		c.Redirect(http.StatusFound, to)
		return
	}
	h.serverError(c, err)
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		service.ErrSessionFull,
		service.ErrFreeCourse,
		service.ErrAlreadyPaid,
		service.ErrForbidden,
		service.ErrGatewayDisabled,
		service.ErrInvalidPayload,
		service.ErrSlugTaken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// safeNext допускает только относительные пути внутри сайта
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	return next
}
