package routes

import (
	"github.com/ARQAP/archive-backend/src/controllers"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

func SetupYearRoutes(router *gin.Engine, service *services.YearService, admin []gin.HandlerFunc, tempDir string) {
	yearController := controllers.NewYearController(service, tempDir)

	years := router.Group("/years")
	{
		years.GET("", yearController.GetYears)
		years.GET("/:yearId", yearController.GetYear)
	}

	protected := router.Group("/years", admin...)
	{
		protected.POST("", yearController.CreateYear)
		protected.PATCH("/:yearId", yearController.UpdateYear)
		protected.DELETE("/:yearId", yearController.DeleteYear)
	}
}
