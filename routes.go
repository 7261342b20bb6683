package main

import (
	"fmt"
	"net/http"

	"folio/api/handlers"
	"folio/api/metrics"
	"folio/api/middleware"
	"folio/api/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// app holds everything the router needs.
type app struct {
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
	limiter   middleware.Limiter
	tokens    *utils.TokenIssuer
	apiKey    string
	corsOrig  string
	proxies   []string
	analytics *handlers.AnalyticsHandlers
	blog      *handlers.BlogHandlers
	contact   *handlers.ContactHandlers
	dashboard *handlers.DashboardHandlers
	auth      *handlers.AuthHandlers
	health    *handlers.HealthHandlers
}

// router builds the HTTP handler. Only the configured proxies may set the
// client address through X-Forwarded-For; with none configured the peer
// address is used, so the contact limiter cannot be dodged by a header.
func (a *app) router() (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(a.proxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(a.log),
		middleware.Metrics(a.metrics),
		middleware.CORSMiddleware(a.corsOrig),
	)
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	adminOnly := middleware.AdminRequired(a.tokens, a.apiKey, a.log)

	api := r.Group("/api")
	{
		api.GET("/healthz", a.health.Health)

		api.POST("/auth/login", a.auth.Login)
		api.POST("/auth/logout", a.auth.Logout)

		api.POST("/analytics", a.analytics.TrackPageView)
		api.POST("/analytics/track-event", a.analytics.TrackEvent)

		api.GET("/blog", a.blog.List)
		api.GET("/blog/:slug", a.blog.Get)

		api.POST("/contact", middleware.RateLimit(a.limiter, a.metrics, a.log), a.contact.Submit)

		// Admin routes
		admin := api.Group("/")
		admin.Use(adminOnly)
		{
			admin.GET("/analytics", a.analytics.GetSummary)
			admin.POST("/blog", a.blog.Create)
			admin.PUT("/blog/:slug", a.blog.Update)
			admin.DELETE("/blog/:slug", a.blog.Delete)
			admin.GET("/contact", a.contact.List)
			admin.PATCH("/contact/:id", a.contact.UpdateStatus)
			admin.GET("/admin/dashboard", a.dashboard.Get)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r, nil
}
