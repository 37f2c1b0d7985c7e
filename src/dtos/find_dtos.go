package dtos

import "github.com/ARQAP/archive-backend/src/db"

type CreateFindCommand struct {
	ObjType      *string `json:"obj_type" binding:"omitempty,max=64"`
	MaterialType *string `json:"material_type" binding:"omitempty,max=64"`
	FileGroup    *string `json:"f_group" binding:"omitempty,max=32"`
	Fragments    *int    `json:"fragments" binding:"omitempty,min=1"`
}

type FindPatch struct {
	ObjType      *string `json:"obj_type" binding:"omitempty,max=64"`
	MaterialType *string `json:"material_type" binding:"omitempty,max=64"`
	FileGroup    *string `json:"f_group" binding:"omitempty,max=32"`
	Fragments    *int    `json:"fragments" binding:"omitempty,min=1"`
}

func (p FindPatch) Fields() db.Patch {
	var patch db.Patch
	patch = db.Set(patch, "obj_type", p.ObjType)
	patch = db.Set(patch, "material_type", p.MaterialType)
	patch = db.Set(patch, "f_group", p.FileGroup)
	patch = db.Set(patch, "fragments", p.Fragments)
	return patch
}
