package api

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gin-gonic/gin"
)

type courseRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"max=50"`
	Description string `json:"description"`
	TutorID     int64  `json:"tutor" binding:"required,gt=0"`
	PriceCents  int    `json:"price_cents" binding:"gte=0"`
	IsActive    *bool  `json:"is_active"`
}

func (r courseRequest) input() service.CourseInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return service.CourseInput{
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		TutorID:     r.TutorID,
		PriceCents:  r.PriceCents,
		IsActive:    active,
	}
}

func (h *Handler) listCourses(c *gin.Context) {
	courses, err := h.Catalog.Courses(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(courses, newCourseResponse))
}

func (h *Handler) getCourse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	course, err := h.Catalog.Course(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newCourseResponse(course))
}

func (h *Handler) createCourse(c *gin.Context) {
	var in courseRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.Catalog.CreateCourse(c.Request.Context(), in.input())
	if err != nil {
		if errors.Is(err, service.ErrTutorNotFound) {
			detail(c, http.StatusBadRequest, service.ErrorMessage(err))
			return
		}
		h.fail(c, err)
		return
	}

	// перечитываем, чтобы вернуть курс вместе с преподавателем
	if full, err := h.Catalog.Course(c.Request.Context(), course.ID); err == nil {
		course = full
	}
	c.JSON(http.StatusCreated, newCourseResponse(course))
}

func (h *Handler) updateCourse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in courseRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.Catalog.UpdateCourse(c.Request.Context(), id, in.input())
	if err != nil {
		if errors.Is(err, service.ErrTutorNotFound) {
			detail(c, http.StatusBadRequest, service.ErrorMessage(err))
			return
		}
		h.fail(c, err)
		return
	}

	if full, err := h.Catalog.Course(c.Request.Context(), course.ID); err == nil {
		course = full
	}
	c.JSON(http.StatusOK, newCourseResponse(course))
}

func (h *Handler) deleteCourse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCourse(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listTutors(c *gin.Context) {
	tutors, err := h.Catalog.Tutors(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(tutors, newTutorResponse))
}

func (h *Handler) getTutor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tutor, err := h.Catalog.Tutor(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTutorResponse(tutor))
}

func (h *Handler) listSessions(c *gin.Context) {
	sessions, err := h.Catalog.Sessions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(sessions, newSessionResponse))
}

func (h *Handler) getSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	session, err := h.Catalog.Session(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}
