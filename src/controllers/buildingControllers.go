package controllers

import (
	"net/http"

	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

type BuildingController struct {
	service *services.BuildingService
	tempDir string
}

func NewBuildingController(service *services.BuildingService, tempDir string) *BuildingController {
	return &BuildingController{service: service, tempDir: tempDir}
}

// GetBuildings lists the buildings active in the route year
func (c *BuildingController) GetBuildings(ctx *gin.Context) {
	year, ok := paramID(ctx, "yearId")
	if !ok {
		return
	}
	buildings, err := c.service.ListActive(ctx.Request.Context(), year)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, buildings)
}

// GetBuilding answers with the composite building or a stored drawing of that name
func (c *BuildingController) GetBuilding(ctx *gin.Context) {
	year, ok := paramID(ctx, "yearId")
	if !ok {
		return
	}
	res, err := c.service.Resolve(ctx.Request.Context(), year, ctx.Param("buildingId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondResolution(ctx, res)
}

func (c *BuildingController) CreateBuilding(ctx *gin.Context) {
	if _, ok := paramID(ctx, "yearId"); !ok {
		return
	}

	var cmd dtos.CreateBuildingCommand
	if err := bind(ctx, &cmd); err != nil {
		respondError(ctx, err)
		return
	}

	upload, err := saveUpload(ctx, "image", c.tempDir)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer removeUpload(upload)
	cmd.ImagePath = upload

	building, err := c.service.CreateBuilding(ctx.Request.Context(), cmd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, building)
}

func (c *BuildingController) UpdateBuilding(ctx *gin.Context) {
	year, ok := paramID(ctx, "yearId")
	if !ok {
		return
	}
	id, ok := paramID(ctx, "buildingId")
	if !ok {
		return
	}

	var patch dtos.BuildingPatch
	if err := bind(ctx, &patch); err != nil {
		respondError(ctx, err)
		return
	}

	upload, err := saveUpload(ctx, "image", c.tempDir)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer removeUpload(upload)
	patch.ImagePath = upload

	building, err := c.service.UpdateBuilding(ctx.Request.Context(), id, year, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, building)
}

func (c *BuildingController) DeleteBuilding(ctx *gin.Context) {
	if _, ok := paramID(ctx, "yearId"); !ok {
		return
	}
	id, ok := paramID(ctx, "buildingId")
	if !ok {
		return
	}
	if err := c.service.DeleteBuilding(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{})
}
