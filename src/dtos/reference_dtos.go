package dtos

import "github.com/ARQAP/archive-backend/src/db"

type CreateReferenceCommand struct {
	Reference   string  `json:"reference" binding:"required,max=4096"`
	Description string  `json:"description" binding:"required,max=16384"`
	DOI         *string `json:"doi" binding:"omitempty,max=255"`
}

type ReferencePatch struct {
	Reference   *string `json:"reference" binding:"omitempty,max=4096"`
	Description *string `json:"description" binding:"omitempty,max=16384"`
	DOI         *string `json:"doi" binding:"omitempty,max=255"`
}

func (p ReferencePatch) Fields() db.Patch {
	var patch db.Patch
	patch = db.Set(patch, "reference", p.Reference)
	patch = db.Set(patch, "description", p.Description)
	patch = db.Set(patch, "doi", p.DOI)
	return patch
}
