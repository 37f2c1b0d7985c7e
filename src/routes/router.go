package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/metrics"
	"github.com/ARQAP/archive-backend/src/middleware"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

// Services bundles everything the route table dispatches to.
type Services struct {
	Years      *services.YearService
	Buildings  *services.BuildingService
	Features   *services.FeatureService
	Finds      *services.FindService
	Files      *services.FileService
	References *services.ReferenceService
	Users      *services.UserService
}

type RouterConfig struct {
	TempDir     string
	CORSOrigins []string
}

// NewRouter builds the gin engine serving the archive.
func NewRouter(cfg RouterConfig, gw db.Gateway, s Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.SetupCORS(cfg.CORSOrigins))
	router.MaxMultipartMemory = services.MaxFileSize

	admin := []gin.HandlerFunc{middleware.AuthMiddleware(), middleware.RequireAdmin(s.Users)}

	SetupYearRoutes(router, s.Years, admin, cfg.TempDir)
	SetupBuildingRoutes(router, s.Buildings, admin, cfg.TempDir)
	SetupFeatureRoutes(router, s.Features, admin)
	SetupFindRoutes(router, s.Finds, admin)
	SetupFileRoutes(router, s.Files, admin, cfg.TempDir)
	SetupReferenceRoutes(router, s.References, admin)
	SetupUserRoutes(router, s.Users, admin)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/healthz", func(ctx *gin.Context) {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := gw.Ping(pingCtx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
