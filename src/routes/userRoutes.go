package routes

import (
	"github.com/ARQAP/archive-backend/src/controllers"
	"github.com/ARQAP/archive-backend/src/middleware"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(router *gin.Engine, service *services.UserService, admin []gin.HandlerFunc) {
	userController := controllers.NewUserController(service)

	// Public routes
	router.POST("/users/register", userController.CreateUser)
	router.POST("/users/login", userController.AuthenticateUser)

	// Authenticated routes
	me := router.Group("/users/me")
	me.Use(middleware.AuthMiddleware())
	{
		me.GET("", userController.GetMe)
		me.PATCH("", userController.UpdateMe)
	}

	// Admin routes
	users := router.Group("/users", admin...)
	{
		users.GET("", userController.GetAllUsers)
		users.GET("/:id", userController.GetUser)
		users.PATCH("/:id", userController.SetAdmin)
		users.DELETE("/:id", userController.DeleteUser)
	}
}
