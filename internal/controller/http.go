package controller

import (
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/controller/api"
	"github.com/Freeeeeet/tutor_market/internal/controller/middleware"
	"github.com/Freeeeeet/tutor_market/internal/controller/pages"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HTTPController struct {
	pages    *pages.Handler
	api      *api.Handler
	resolver middleware.UserResolver
	logger   *zap.Logger
}

func NewHTTPController(
	pagesHandler *pages.Handler,
	apiHandler *api.Handler,
	resolver middleware.UserResolver,
	logger *zap.Logger,
) *HTTPController {
	return &HTTPController{
		pages:    pagesHandler,
		api:      apiHandler,
		resolver: resolver,
		logger:   logger,
	}
}

// Engine собирает роутер со всеми страницами и API
func (hc *HTTPController) Engine() (*gin.Engine, error) {
	tmpl, err := pages.LoadTemplates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.RedirectTrailingSlash = true
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(hc.logger),
		middleware.AccessLog(hc.logger),
		middleware.Authenticate(hc.resolver),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	hc.pages.Register(r)
	hc.api.Register(r.Group("/api"))

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		hc.pages.NoRoute(c)
	})

	hc.logger.Info("HTTP routes registered", zap.Int("routes", len(r.Routes())))
	return r, nil
}
