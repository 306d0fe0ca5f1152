package api

import (
	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/handlers"
	"github.com/venturelink/venturelink/internal/middleware"
	"github.com/venturelink/venturelink/internal/models"
)

func registerDealRoutes(api *gin.RouterGroup, handler *handlers.DealHandler) {
	group := api.Group("/deals")
	{
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("", middleware.RequireRole(models.RoleEntrepreneur), handler.Create)
		group.PATCH("/:id/status", handler.UpdateStatus)
		group.POST("/:id/investments", middleware.RequireRole(models.RoleInvestor), handler.Invest)
	}

	api.POST("/investments/:investmentID/paid",
		middleware.RequireRole(models.RoleEntrepreneur), handler.MarkInvestmentPaid)
}
