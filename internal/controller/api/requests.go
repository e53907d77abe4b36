package api

import (
	"net/http"

	"github.com/Freeeeeet/tutor_market/internal/controller/middleware"
	"github.com/gin-gonic/gin"
)

type reviewRequest struct {
	IDs     []int64 `json:"ids" binding:"required,min=1"`
	Comment string  `json:"comment" binding:"max=500"`
}

func (h *Handler) listRequests(c *gin.Context) {
	reqs, err := h.Cancellation.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(reqs))
}

func (h *Handler) getRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, err := h.Cancellation.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) approveRequests(c *gin.Context) {
	h.review(c, true)
}

func (h *Handler) rejectRequests(c *gin.Context) {
	h.review(c, false)
}

func (h *Handler) review(c *gin.Context, approve bool) {
	var in reviewRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, "ids must be a non-empty list")
		return
	}

	reviewer := middleware.CurrentUser(c)
	review := h.Cancellation.Reject
	if approve {
		review = h.Cancellation.Approve
	}

	res, err := review(c.Request.Context(), reviewer, in.IDs, in.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, batchResponse{Processed: res.Processed, Skipped: res.Skipped})
}
