package controllers

import (
	"net/http"

	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

type FeatureController struct {
	service *services.FeatureService
}

func NewFeatureController(service *services.FeatureService) *FeatureController {
	return &FeatureController{service: service}
}

func (c *FeatureController) GetFeatures(ctx *gin.Context) {
	buildingID, ok := paramID(ctx, "buildingId")
	if !ok {
		return
	}
	features, err := c.service.ListFeatures(ctx.Request.Context(), buildingID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, features)
}

func (c *FeatureController) CreateFeature(ctx *gin.Context) {
	buildingID, ok := paramID(ctx, "buildingId")
	if !ok {
		return
	}
	var cmd dtos.CreateFeatureCommand
	if err := bind(ctx, &cmd); err != nil {
		respondError(ctx, err)
		return
	}
	feature, err := c.service.CreateFeature(ctx.Request.Context(), buildingID, cmd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, feature)
}

func (c *FeatureController) UpdateFeature(ctx *gin.Context) {
	id, ok := paramID(ctx, "featureId")
	if !ok {
		return
	}
	var patch dtos.FeaturePatch
	if err := bind(ctx, &patch); err != nil {
		respondError(ctx, err)
		return
	}
	feature, err := c.service.UpdateFeature(ctx.Request.Context(), id, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, feature)
}

func (c *FeatureController) DeleteFeature(ctx *gin.Context) {
	id, ok := paramID(ctx, "featureId")
	if !ok {
		return
	}
	if err := c.service.DeleteFeature(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{})
}
