package controllers

import (
	"net/http"

	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

type FindController struct {
	service *services.FindService
}

func NewFindController(service *services.FindService) *FindController {
	return &FindController{service: service}
}

func (c *FindController) GetFinds(ctx *gin.Context) {
	buildingID, ok := paramID(ctx, "buildingId")
	if !ok {
		return
	}
	finds, err := c.service.ListFinds(ctx.Request.Context(), buildingID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, finds)
}

func (c *FindController) CreateFind(ctx *gin.Context) {
	buildingID, ok := paramID(ctx, "buildingId")
	if !ok {
		return
	}
	var cmd dtos.CreateFindCommand
	if err := bind(ctx, &cmd); err != nil {
		respondError(ctx, err)
		return
	}
	find, err := c.service.CreateFind(ctx.Request.Context(), buildingID, cmd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, find)
}

func (c *FindController) UpdateFind(ctx *gin.Context) {
	id, ok := paramID(ctx, "findId")
	if !ok {
		return
	}
	var patch dtos.FindPatch
	if err := bind(ctx, &patch); err != nil {
		respondError(ctx, err)
		return
	}
	find, err := c.service.UpdateFind(ctx.Request.Context(), id, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, find)
}

func (c *FindController) DeleteFind(ctx *gin.Context) {
	id, ok := paramID(ctx, "findId")
	if !ok {
		return
	}
	if err := c.service.DeleteFind(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{})
}
