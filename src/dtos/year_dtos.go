package dtos

import "github.com/ARQAP/archive-backend/src/db"

// CreateYearCommand is a parsed POST /years request. ImagePath is the
// temporary location of an uploaded SVG, empty when none was sent.
type CreateYearCommand struct {
	Year        int     `json:"year" form:"year" binding:"required,min=1670"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=16384"`
	ImagePath   string  `json:"-" form:"-"`
}

// YearPatch lists the patchable year columns. Image and ImagePath are mutually exclusive.
type YearPatch struct {
	Description *string `json:"description" form:"description" binding:"omitempty,max=16384"`
	Image       *string `json:"image" form:"image" binding:"omitempty,max=255"`
	ImagePath   string  `json:"-" form:"-"`
}

func (p YearPatch) Fields() db.Patch {
	var patch db.Patch
	patch = db.Set(patch, "description", p.Description)
	patch = db.Set(patch, "image", p.Image)
	return patch
}
