package controllers

import (
	"net/http"

	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/middleware"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

// CreateUser handles POST /users/register
func (c *UserController) CreateUser(ctx *gin.Context) {
	var cmd dtos.RegisterCommand
	if err := bind(ctx, &cmd); err != nil {
		respondError(ctx, err)
		return
	}
	user, err := c.service.CreateUser(ctx.Request.Context(), cmd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, user)
}

// AuthenticateUser handles POST /users/login
func (c *UserController) AuthenticateUser(ctx *gin.Context) {
	var req dtos.LoginRequest
	if err := bind(ctx, &req); err != nil {
		respondError(ctx, err)
		return
	}
	resp, err := c.service.AuthenticateUser(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *UserController) GetMe(ctx *gin.Context) {
	id, _ := middleware.UserID(ctx)
	user, err := c.service.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (c *UserController) UpdateMe(ctx *gin.Context) {
	id, _ := middleware.UserID(ctx)
	var patch dtos.UserPatch
	if err := bind(ctx, &patch); err != nil {
		respondError(ctx, err)
		return
	}
	user, err := c.service.UpdateSelf(ctx.Request.Context(), id, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (c *UserController) GetAllUsers(ctx *gin.Context) {
	users, err := c.service.GetAllUsers(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, users)
}

func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	user, err := c.service.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// SetAdmin handles PATCH /users/:id, which only toggles the admin flag
func (c *UserController) SetAdmin(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var patch dtos.AdminPatch
	if err := bind(ctx, &patch); err != nil {
		respondError(ctx, err)
		return
	}
	actor, _ := middleware.UserID(ctx)
	user, err := c.service.SetAdmin(ctx.Request.Context(), actor, id, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.service.DeleteUser(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{})
}
