package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/trustimonials/trustimonials-backend/config"
	"github.com/trustimonials/trustimonials-backend/handlers"
	"github.com/trustimonials/trustimonials-backend/middleware"
)

// Dependencies holds everything SetupRouter wires into the route tree.
type Dependencies struct {
	Config             *config.Config
	RedisClient        *redis.Client
	HealthHandler      *handlers.HealthHandler
	SpaceHandler       *handlers.SpaceHandler
	TestimonialHandler *handlers.TestimonialHandler
	WidgetHandler      *handlers.WidgetHandler
	LinkHandler        *handlers.LinkHandler
	TemplateHandler    *handlers.TemplateHandler
	EmbedHandler       *handlers.EmbedHandler
	PublicHandler      *handlers.PublicHandler
}

// SetupRouter configures and returns the main Gin engine with all routes
// defined. Three surfaces share the engine: the anonymous embed routes, the
// anonymous collection routes, and the authenticated dashboard API.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.ErrorHandler())

	// Health and metrics
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Embed surface. No CORS handling: the documents are loaded in iframes,
	// not fetched, and do their own origin checks.
	embed := r.Group("/embed")
	{
		embed.GET("/wall/:widgetId", deps.EmbedHandler.ServeWall)
		embed.GET("/single/:widgetId", deps.EmbedHandler.ServeSingle)
		embed.GET("/config/:widgetId", deps.EmbedHandler.ServeBootstrap)
	}

	// Anonymous collection surface, rate limited per client IP and scope.
	window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
	limit := deps.Config.RateLimit.SubmissionsPerWindow

	r.GET("/s/:spaceId", deps.PublicHandler.GetSpaceConfig)
	r.POST("/s/:spaceId/submissions",
		middleware.SubmissionRateLimiter(deps.RedisClient, "spaceId", limit, window),
		deps.PublicHandler.SubmitToSpace,
	)
	r.GET("/t/:slug", deps.PublicHandler.ResolveLink)
	r.POST("/t/:slug/submissions",
		middleware.SubmissionRateLimiter(deps.RedisClient, "slug", limit, window),
		deps.PublicHandler.SubmitViaLink,
	)

	// Authenticated dashboard API
	api := r.Group("/api")
	api.Use(middleware.CORSMiddleware(deps.Config.Server.AllowedOrigins))
	api.Use(middleware.AuthMiddleware(&deps.Config.Server))
	{
		spaces := api.Group("/spaces")
		{
			spaces.POST("", deps.SpaceHandler.CreateSpace)
			spaces.GET("", deps.SpaceHandler.ListSpaces)
			spaces.GET("/:spaceId", deps.SpaceHandler.GetSpace)
			spaces.PUT("/:spaceId", deps.SpaceHandler.UpdateSpace)
			spaces.DELETE("/:spaceId", deps.SpaceHandler.DeleteSpace)
			spaces.GET("/:spaceId/credits", deps.SpaceHandler.GetCredits)

			spaces.POST("/:spaceId/testimonials", deps.TestimonialHandler.CreateTestimonial)
			spaces.GET("/:spaceId/testimonials", deps.TestimonialHandler.ListTestimonials)
			spaces.POST("/:spaceId/testimonials/bulk", deps.TestimonialHandler.BulkModerate)

			spaces.POST("/:spaceId/widgets", deps.WidgetHandler.CreateWidget)
			spaces.GET("/:spaceId/widgets", deps.WidgetHandler.ListWidgets)
		}

		testimonials := api.Group("/testimonials")
		{
			// Space-less legacy collection, kept for pre-spaces tenants.
			testimonials.POST("", deps.TestimonialHandler.CreateLegacy)
			testimonials.GET("", deps.TestimonialHandler.ListLegacy)

			testimonials.GET("/:testimonialId", deps.TestimonialHandler.GetTestimonial)
			testimonials.POST("/:testimonialId/actions", deps.TestimonialHandler.Moderate)
			testimonials.DELETE("/:testimonialId", deps.TestimonialHandler.DeleteTestimonial)
		}

		widgets := api.Group("/widgets")
		{
			widgets.GET("/:widgetId", deps.WidgetHandler.GetWidget)
			widgets.PUT("/:widgetId", deps.WidgetHandler.UpdateWidget)
			widgets.DELETE("/:widgetId", deps.WidgetHandler.DeleteWidget)
			widgets.GET("/:widgetId/preview", deps.WidgetHandler.Preview)
		}

		links := api.Group("/links")
		{
			links.POST("", deps.LinkHandler.CreateLink)
			links.GET("", deps.LinkHandler.ListLinks)
			links.GET("/:linkId", deps.LinkHandler.GetLink)
			links.PUT("/:linkId", deps.LinkHandler.UpdateLink)
			links.DELETE("/:linkId", deps.LinkHandler.DeleteLink)
			links.POST("/:linkId/send", deps.LinkHandler.SendRequest)
		}

		templates := api.Group("/templates")
		{
			templates.POST("", deps.TemplateHandler.CreateTemplate)
			templates.GET("", deps.TemplateHandler.ListTemplates)
			templates.GET("/:templateId", deps.TemplateHandler.GetTemplate)
			templates.PUT("/:templateId", deps.TemplateHandler.UpdateTemplate)
			templates.DELETE("/:templateId", deps.TemplateHandler.DeleteTemplate)
		}
	}

	return r
}
