package pages

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func enrollmentParam(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func (h *Handler) renderCheckout(c *gin.Context, enrollmentID int64) {
	h.render(c, http.StatusOK, "checkout.html", gin.H{
		"Title":          "Checkout",
		"EnrollmentID":   enrollmentID,
		"GatewayEnabled": h.Payments.GatewayEnabled(c.Request.Context()),
	})
}

func (h *Handler) checkout(c *gin.Context) {
	h.renderCheckout(c, enrollmentParam(c.Query("enrollment_id")))
}

// checkoutSubmit redirects the browser to the hosted payment page
func (h *Handler) checkoutSubmit(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	enrollmentID := enrollmentParam(c.PostForm("enrollment_id"))
	if enrollmentID == 0 {
		enrollmentID = enrollmentParam(c.Query("enrollment_id"))
	}
	if enrollmentID == 0 {
		h.renderCheckout(c, 0)
		return
	}

	res, err := h.Payments.StartCheckout(c.Request.Context(), user.ID, enrollmentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGatewayDisabled):
			h.renderCheckout(c, enrollmentID)
		case errors.Is(err, service.ErrFreeCourse), errors.Is(err, service.ErrAlreadyPaid):
			addFlash(c, levelInfo, service.ErrorMessage(err))
			c.Redirect(http.StatusFound, "/dashboard/")
		case service.IsNotFound(err):
			h.notFound(c)
		default:
			h.logger.Warn("Checkout failed",
				zap.Int64("user_id", user.ID),
				zap.Int64("enrollment_id", enrollmentID),
				zap.Error(err))
			addFlash(c, levelError, "Could not start checkout. Please try again.")
			c.Redirect(http.StatusFound, "/checkout/?enrollment_id="+strconv.FormatInt(enrollmentID, 10))
		}
		return
	}

	c.Redirect(http.StatusSeeOther, res.URL)
}

func (h *Handler) checkoutCancel(c *gin.Context) {
	h.render(c, http.StatusOK, "checkout_cancel.html", gin.H{
		"Title":        "Payment cancelled",
		"EnrollmentID": enrollmentParam(c.Query("enrollment_id")),
	})
}
