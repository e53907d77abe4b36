package pages

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutor_market/internal/controller/middleware"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.opts.SessionTTL.Seconds()), "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard/")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Sign in", "Next": c.Query("next")})
}

func (h *Handler) loginSubmit(c *gin.Context) {
	username := c.PostForm("username")
	next := c.PostForm("next")

	_, pair, err := h.Accounts.Login(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.serverError(c, err)
			return
		}
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Title":    "Sign in",
			"Next":     next,
			"Username": username,
			"Error":    service.ErrorMessage(err),
		})
		return
	}

	h.setSession(c, pair.Access)
	c.Redirect(http.StatusFound, safeNext(next, "/dashboard/"))
}

func (h *Handler) register(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":  "Register",
		"Form":   service.RegisterInput{},
		"Errors": service.FieldErrors{},
	})
}

func (h *Handler) registerSubmit(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		h.logger.Debug("Failed to bind register form", zap.Error(err))
	}

	user, err := h.Accounts.Register(c.Request.Context(), in)
	if err != nil {
		var fe service.FieldErrors
		if !errors.As(err, &fe) {
			h.serverError(c, err)
			return
		}
		in.Password, in.PasswordConfirm = "", ""
		h.render(c, http.StatusOK, "register.html", gin.H{
			"Title":  "Register",
			"Form":   in,
			"Errors": fe,
		})
		return
	}

	h.logger.Info("Account created via site", zap.Int64("user_id", user.ID))
	addFlash(c, levelSuccess, "Account created. Please sign in.")
	c.Redirect(http.StatusFound, "/auth/login/")
}

func (h *Handler) logoutConfirm(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}
	h.render(c, http.StatusOK, "logout_confirm.html", gin.H{"Title": "Sign out"})
}

func (h *Handler) logoutPerform(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}
	h.clearSession(c)
	addFlash(c, levelInfo, "You have been signed out.")
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) logout(c *gin.Context) {
	h.clearSession(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) profileForm(user service.ProfileInput, errs service.FieldErrors) gin.H {
	if errs == nil {
		errs = service.FieldErrors{}
	}
	return gin.H{"Title": "Profile", "Form": user, "Errors": errs}
}

func (h *Handler) profile(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "profile.html", h.profileForm(service.ProfileInput{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Bio:       user.Bio,
		Phone:     user.Phone,
	}, nil))
}

func (h *Handler) profileSubmit(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var in service.ProfileInput
	if err := c.ShouldBind(&in); err != nil {
		h.logger.Debug("Failed to bind profile form", zap.Error(err))
	}

	if _, err := h.Accounts.UpdateProfile(c.Request.Context(), user.ID, in); err != nil {
		var fe service.FieldErrors
		if !errors.As(err, &fe) {
			h.serverError(c, err)
			return
		}
		addFlash(c, levelError, "Please correct the errors below.")
		h.render(c, http.StatusOK, "profile.html", h.profileForm(in, fe))
		return
	}

	addFlash(c, levelSuccess, "Profile updated.")
	c.Redirect(http.StatusFound, "/profile/")
}
