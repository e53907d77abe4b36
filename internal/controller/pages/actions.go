package pages

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) enroll(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	slug := c.Param("slug")
	back := "/courses/" + slug + "/"
	if _, _, err := h.Enrollments.EnrollBySlug(c.Request.Context(), user.ID, slug); err != nil {
		if service.IsNotFound(err) {
			h.notFound(c)
			return
		}
		h.logger.Error("Failed to enroll",
			zap.Int64("user_id", user.ID),
			zap.String("slug", slug),
			zap.Error(err))
		addFlash(c, levelError, "Could not enroll. Please try again.")
		c.Redirect(http.StatusFound, back)
		return
	}

	addFlash(c, levelSuccess, "Enrolled successfully.")
	c.Redirect(http.StatusFound, back)
}

func (h *Handler) book(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "session_id")
	if !ok {
		h.notFound(c)
		return
	}

	if _, _, err := h.Bookings.Book(c.Request.Context(), user.ID, sessionID); err != nil {
		h.fail(c, err, "/bookings/")
		return
	}

	addFlash(c, levelSuccess, "Session booked.")
	c.Redirect(http.StatusFound, "/dashboard/")
}

// pay records a sample payment without contacting the gateway
func (h *Handler) pay(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}
	enrollmentID, ok := parseID(c, "enrollment_id")
	if !ok {
		h.notFound(c)
		return
	}

	if _, err := h.Payments.PayMock(c.Request.Context(), user.ID, enrollmentID); err != nil {
		if errors.Is(err, service.ErrFreeCourse) {
			addFlash(c, levelInfo, service.ErrorMessage(err))
			c.Redirect(http.StatusFound, "/dashboard/")
			return
		}
		h.fail(c, err, "/dashboard/")
		return
	}

	addFlash(c, levelSuccess, "Payment recorded (sample).")
	c.Redirect(http.StatusFound, "/dashboard/")
}

func (h *Handler) cancelBooking(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}
	bookingID, ok := parseID(c, "booking_id")
	if !ok {
		h.notFound(c)
		return
	}

	if _, _, err := h.Cancellation.RequestCancellation(c.Request.Context(), user.ID, bookingID); err != nil {
		h.fail(c, err, "/dashboard/")
		return
	}

	addFlash(c, levelInfo, "Cancellation request submitted. Awaiting admin approval.")
	c.Redirect(http.StatusFound, "/dashboard/")
}

func (h *Handler) approveRequests(c *gin.Context) {
	h.reviewRequests(c, true)
}

func (h *Handler) rejectRequests(c *gin.Context) {
	h.reviewRequests(c, false)
}

func (h *Handler) reviewRequests(c *gin.Context, approve bool) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	ids := parseIDs(c.PostFormArray("ids"))
	comment := strings.TrimSpace(c.PostForm("comment"))

	review := h.Cancellation.Reject
	verb := "rejected"
	if approve {
		review = h.Cancellation.Approve
		verb = "approved"
	}

	res, err := review(c.Request.Context(), user, ids, comment)
	if err != nil {
		h.fail(c, err, "/dashboard/")
		return
	}

	addFlash(c, levelSuccess, fmt.Sprintf("%d request(s) %s.", res.Processed, verb))
	c.Redirect(http.StatusFound, "/admin-dashboard/")
}

func parseIDs(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
