package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) obtainToken(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, "username and password are required")
		return
	}

	_, pair, err := h.Accounts.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) refreshToken(c *gin.Context) {
	var in struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, "refresh is required")
		return
	}

	pair, err := h.Accounts.Refresh(c.Request.Context(), in.Refresh)
	if err != nil {
		detail(c, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	c.JSON(http.StatusOK, pair)
}
