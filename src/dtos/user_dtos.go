package dtos

import (
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/models"
)

type RegisterCommand struct {
	Username string `json:"username" binding:"required,max=256"`
	Email    string `json:"email" binding:"required,email,max=256"`
	Password string `json:"password" binding:"required,min=10,max=256"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User      models.UserModel `json:"user"`
	Token     string           `json:"token"`
	ExpiresIn int64            `json:"expiresIn"`
}

// UserPatch is what a user may change about themselves. Password is plain text here; it is hashed before the update.
type UserPatch struct {
	Email    *string `json:"email" binding:"omitempty,email,max=256"`
	Password *string `json:"password" binding:"omitempty,min=10,max=256"`
}

func (p UserPatch) Fields(hashedPassword *string) db.Patch {
	var patch db.Patch
	patch = db.Set(patch, "email", p.Email)
	patch = db.Set(patch, "password", hashedPassword)
	return patch
}

type AdminPatch struct {
	Admin *bool `json:"admin" binding:"required"`
}

func (p AdminPatch) Fields() db.Patch {
	return db.Set(nil, "admin", p.Admin)
}
