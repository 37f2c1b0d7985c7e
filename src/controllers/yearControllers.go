package controllers

import (
	"net/http"

	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

type YearController struct {
	service *services.YearService
	tempDir string
}

func NewYearController(service *services.YearService, tempDir string) *YearController {
	return &YearController{service: service, tempDir: tempDir}
}

// GetYears handles GET /years
func (c *YearController) GetYears(ctx *gin.Context) {
	years, err := c.service.ListYears(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, years)
}

// GetYear answers with the year row or, for "<year>.svg", its drawing
func (c *YearController) GetYear(ctx *gin.Context) {
	res, err := c.service.Resolve(ctx.Request.Context(), ctx.Param("yearId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondResolution(ctx, res)
}

func (c *YearController) CreateYear(ctx *gin.Context) {
	var cmd dtos.CreateYearCommand
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

	year, err := c.service.CreateYear(ctx.Request.Context(), cmd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, year)
}

func (c *YearController) UpdateYear(ctx *gin.Context) {
	id, ok := paramID(ctx, "yearId")
	if !ok {
		return
	}

	var patch dtos.YearPatch
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

	year, err := c.service.UpdateYear(ctx.Request.Context(), id, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, year)
}

func (c *YearController) DeleteYear(ctx *gin.Context) {
	id, ok := paramID(ctx, "yearId")
	if !ok {
		return
	}
	if err := c.service.DeleteYear(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{})
}
