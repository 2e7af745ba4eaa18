package router

import (
	"whichGLP/internal/middleware"
	"whichGLP/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupHealthRoutes(api *echo.Group, handler *rest.HealthHandler) {
	api.GET("/health", handler.Health)
}

func SetupStatsRoutes(api *echo.Group, handler *rest.StatsHandler) {
	stats := api.Group("/stats")

	stats.GET("", handler.GetAllStats)
	stats.GET("/platform", handler.GetPlatformStats)
	stats.GET("/drugs/:drug", handler.GetDrugStats)
}

func SetupExperienceRoutes(api *echo.Group, handler *rest.ExperienceHandler) {
	experiences := api.Group("/experiences")

	experiences.GET("", handler.ListExperiences)
	experiences.GET("/:id", handler.GetExperienceByID)
}

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	api.POST("/recommendations", handler.Recommend)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.AdminHandler, adminToken string) {
	admin := api.Group("/admin", middleware.AdminToken(adminToken))

	admin.POST("/refresh", handler.Refresh)
}
