package pages

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) home(c *gin.Context) {
	courses, err := h.Catalog.FeaturedCourses(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "home.html", gin.H{"Courses": courses})
}

func (h *Handler) courses(c *gin.Context) {
	courses, err := h.Catalog.ActiveCourses(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "courses.html", gin.H{"Title": "Courses", "Courses": courses})
}

func (h *Handler) courseDetail(c *gin.Context) {
	detail, err := h.Catalog.CourseBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "course_detail.html", gin.H{"Title": detail.Course.Title, "Detail": detail})
}

func (h *Handler) tutors(c *gin.Context) {
	tutors, err := h.Catalog.Tutors(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "tutors.html", gin.H{"Title": "Tutors", "Tutors": tutors})
}

func (h *Handler) bookings(c *gin.Context) {
	sessions, err := h.Catalog.UpcomingSessions(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "bookings.html", gin.H{"Title": "Sessions", "Sessions": sessions})
}
