package controllers

import (
	"net/http"

	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
)

type ReferenceController struct {
	service *services.ReferenceService
}

func NewReferenceController(service *services.ReferenceService) *ReferenceController {
	return &ReferenceController{service: service}
}

func (c *ReferenceController) GetReferences(ctx *gin.Context) {
	refs, err := c.service.ListReferences(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, refs)
}

func (c *ReferenceController) CreateReference(ctx *gin.Context) {
	var cmd dtos.CreateReferenceCommand
	if err := bind(ctx, &cmd); err != nil {
		respondError(ctx, err)
		return
	}
	ref, err := c.service.CreateReference(ctx.Request.Context(), cmd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, ref)
}

func (c *ReferenceController) UpdateReference(ctx *gin.Context) {
	id, ok := paramID(ctx, "referenceId")
	if !ok {
		return
	}
	var patch dtos.ReferencePatch
	if err := bind(ctx, &patch); err != nil {
		respondError(ctx, err)
		return
	}
	ref, err := c.service.UpdateReference(ctx.Request.Context(), id, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ref)
}

func (c *ReferenceController) DeleteReference(ctx *gin.Context) {
	id, ok := paramID(ctx, "referenceId")
	if !ok {
		return
	}
	if err := c.service.DeleteReference(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{})
}
