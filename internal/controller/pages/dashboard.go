package pages

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutor_market/internal/controller/middleware"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		h.render(c, http.StatusUnauthorized, "dashboard_anon.html", gin.H{"Title": "Dashboard"})
		return
	}

	d, err := h.Dashboard.Student(c.Request.Context(), user.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "Dashboard": d})
}

func (h *Handler) adminDashboard(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	d, err := h.Dashboard.Admin(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			addFlash(c, levelError, service.ErrorMessage(err))
			c.Redirect(http.StatusFound, "/dashboard/")
			return
		}
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "admin_dashboard.html", gin.H{"Title": "Administration", "Admin": d})
}
