package routes

import (
	"github.com/ARQAP/archive-backend/src/controllers"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

const buildingsPath = "/years/:yearId/buildings"

func SetupBuildingRoutes(router *gin.Engine, service *services.BuildingService, admin []gin.HandlerFunc, tempDir string) {
	buildingController := controllers.NewBuildingController(service, tempDir)

	buildings := router.Group(buildingsPath)
	{
		buildings.GET("", buildingController.GetBuildings)
		buildings.GET("/:buildingId", buildingController.GetBuilding)
	}

	protected := router.Group(buildingsPath, admin...)
	{
		protected.POST("", buildingController.CreateBuilding)
		protected.PATCH("/:buildingId", buildingController.UpdateBuilding)
		protected.DELETE("/:buildingId", buildingController.DeleteBuilding)
	}
}

func SetupFeatureRoutes(router *gin.Engine, service *services.FeatureService, admin []gin.HandlerFunc) {
	featureController := controllers.NewFeatureController(service)
	path := buildingsPath + "/:buildingId/features"

	router.GET(path, featureController.GetFeatures)

	protected := router.Group(path, admin...)
	{
		protected.POST("", featureController.CreateFeature)
		protected.PATCH("/:featureId", featureController.UpdateFeature)
		protected.DELETE("/:featureId", featureController.DeleteFeature)
	}
}

func SetupFindRoutes(router *gin.Engine, service *services.FindService, admin []gin.HandlerFunc) {
	findController := controllers.NewFindController(service)
	path := buildingsPath + "/:buildingId/finds"

	router.GET(path, findController.GetFinds)

	protected := router.Group(path, admin...)
	{
		protected.POST("", findController.CreateFind)
		protected.PATCH("/:findId", findController.UpdateFind)
		protected.DELETE("/:findId", findController.DeleteFind)
	}
}
