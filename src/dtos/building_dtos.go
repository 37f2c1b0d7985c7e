package dtos

import (
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/models"
)

type CreateBuildingCommand struct {
	Phase       string  `json:"phase" form:"phase" binding:"required,min=3,max=32"`
	Start       int     `json:"start" form:"start" binding:"required,min=1670"`
	End         int     `json:"end" form:"end" binding:"required,min=1671,gtefield=Start"`
	Path        *string `json:"path" form:"path" binding:"omitempty,max=8192"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=16384"`
	En          *string `json:"en" form:"en" binding:"omitempty,max=64"`
	Is          *string `json:"is" form:"is" binding:"omitempty,max=64"`
	ImagePath   string  `json:"-" form:"-"`
}

type BuildingPatch struct {
	Phase       *string `json:"phase" form:"phase" binding:"omitempty,min=3,max=32"`
	Start       *int    `json:"start" form:"start" binding:"omitempty,min=1670"`
	End         *int    `json:"end" form:"end" binding:"omitempty,min=1671"`
	Path        *string `json:"path" form:"path" binding:"omitempty,max=8192"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=16384"`
	En          *string `json:"en" form:"en" binding:"omitempty,max=64"`
	Is          *string `json:"is" form:"is" binding:"omitempty,max=64"`
	Image       *string `json:"image" form:"image" binding:"omitempty,max=255"`
	ImagePath   string  `json:"-" form:"-"`
}

func (p BuildingPatch) Fields() db.Patch {
	var patch db.Patch
	patch = db.Set(patch, "phase", p.Phase)
	patch = db.Set(patch, "start_year", p.Start)
	patch = db.Set(patch, "end_year", p.End)
	patch = db.Set(patch, "path", p.Path)
	patch = db.Set(patch, "description", p.Description)
	patch = db.Set(patch, "english", p.En)
	patch = db.Set(patch, "icelandic", p.Is)
	patch = db.Set(patch, "image", p.Image)
	return patch
}

type FeatureSummary struct {
	Type  *string `json:"type"`
	Count int     `json:"count"`
}

type FindSummary struct {
	FileGroup      *string `json:"f_group" gorm:"column:f_group"`
	TotalFragments int     `json:"totalFragments" gorm:"column:total_fragments"`
}

type BuildingFiles struct {
	Features []models.SharedFileModel `json:"features"`
	Finds    []models.SharedFileModel `json:"finds"`
}

// BuildingDetail is the building row merged with its aggregates.
type BuildingDetail struct {
	models.BuildingModel
	Features []FeatureSummary `json:"features"`
	Finds    []FindSummary    `json:"finds"`
	Files    BuildingFiles    `json:"files"`
}
