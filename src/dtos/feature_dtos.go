package dtos

import "github.com/ARQAP/archive-backend/src/db"

type CreateFeatureCommand struct {
	Type        *string `json:"type" binding:"omitempty,max=64"`
	Description *string `json:"description" binding:"omitempty,max=16384"`
}

type FeaturePatch struct {
	Type        *string `json:"type" binding:"omitempty,max=64"`
	Description *string `json:"description" binding:"omitempty,max=16384"`
}

func (p FeaturePatch) Fields() db.Patch {
	var patch db.Patch
	patch = db.Set(patch, "type", p.Type)
	patch = db.Set(patch, "description", p.Description)
	return patch
}
