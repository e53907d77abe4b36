package api

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutor_market/internal/controller/middleware"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Enrollments

func (h *Handler) listEnrollments(c *gin.Context) {
	user := middleware.CurrentUser(c)
	enrollments, err := h.Enrollments.ListForStudent(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(enrollments))
}

func (h *Handler) getEnrollment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	enrollment, err := h.Enrollments.ForStudent(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (h *Handler) createEnrollment(c *gin.Context) {
	var in struct {
		Course int64 `json:"course" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, "course is required")
		return
	}

	enrollment, created, err := h.Enrollments.Enroll(c.Request.Context(), middleware.CurrentUser(c).ID, in.Course)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			detail(c, http.StatusBadRequest, "Invalid course.")
			return
		}
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, enrollment)
}

func (h *Handler) deleteEnrollment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Enrollments.Unenroll(c.Request.Context(), middleware.CurrentUser(c).ID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Bookings

func (h *Handler) listBookings(c *gin.Context) {
	bookings, err := h.Bookings.ListForStudent(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(bookings))
}

func (h *Handler) getBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	booking, err := h.Bookings.ForStudent(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// createBooking goes through the capacity check, a full session is 409
func (h *Handler) createBooking(c *gin.Context) {
	var in struct {
		Session int64 `json:"session" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, "session is required")
		return
	}

	booking, created, err := h.Bookings.Book(c.Request.Context(), middleware.CurrentUser(c).ID, in.Session)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			detail(c, http.StatusBadRequest, "Invalid session.")
			return
		}
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, booking)
}

// deleteBooking does not delete: it files a cancellation request for review
func (h *Handler) deleteBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, _, err := h.Cancellation.RequestCancellation(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"detail":  "Cancellation request submitted. Awaiting admin approval.",
		"request": req,
	})
}

// Resources

func (h *Handler) listResources(c *gin.Context) {
	resources, err := h.Catalog.Resources(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(resources))
}

func (h *Handler) getResource(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resource, err := h.Catalog.Resource(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

// Payments

func (h *Handler) listPayments(c *gin.Context) {
	payments, err := h.Payments.ListForStudent(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(payments))
}

func (h *Handler) getPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.Payments.ForStudent(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) createCheckoutSession(c *gin.Context) {
	var in service.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, service.ErrorMessage(service.ErrInvalidPayload))
		return
	}

	res, err := h.Payments.CreateCheckoutSession(c.Request.Context(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPayload),
			errors.Is(err, service.ErrEnrollmentNotFound):
			detail(c, http.StatusBadRequest, service.ErrorMessage(service.ErrInvalidPayload))
		case errors.Is(err, service.ErrFreeCourse),
			errors.Is(err, service.ErrAlreadyPaid),
			errors.Is(err, service.ErrGatewayDisabled):
			h.fail(c, err)
		default:
			h.logger.Warn("Checkout failed at gateway", zap.Error(err))
			detail(c, http.StatusBadGateway, "Payment gateway error.")
		}
		return
	}

	c.JSON(http.StatusCreated, checkoutResponse{
		ID:        res.Payment.ExternalRef,
		URL:       res.URL,
		PaymentID: res.Payment.ID,
	})
}
