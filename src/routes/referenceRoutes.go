package routes

import (
	"github.com/ARQAP/archive-backend/src/controllers"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

func SetupReferenceRoutes(router *gin.Engine, service *services.ReferenceService, admin []gin.HandlerFunc) {
	referenceController := controllers.NewReferenceController(service)

	router.GET("/references", referenceController.GetReferences)

	protected := router.Group("/references", admin...)
	{
		protected.POST("", referenceController.CreateReference)
		protected.PATCH("/:referenceId", referenceController.UpdateReference)
		protected.DELETE("/:referenceId", referenceController.DeleteReference)
	}
}
