package routes

import (
	"github.com/ARQAP/archive-backend/src/controllers"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

// SetupFileRoutes mounts /csv, /pdf and /images.
func SetupFileRoutes(router *gin.Engine, service *services.FileService, admin []gin.HandlerFunc, tempDir string) {
	for _, kind := range []services.FileKind{services.KindCSV, services.KindPDF, services.KindImage} {
		fileController := controllers.NewFileController(service, kind, tempDir)
		path := "/" + kind.Name

		files := router.Group(path)
		{
			files.GET("", fileController.GetFiles)
			files.GET("/:fileId", fileController.GetFile)
		}

		protected := router.Group(path, admin...)
		{
			protected.POST("", fileController.UploadFile)
			protected.DELETE("/:fileId", fileController.DeleteFile)
		}
	}
}
