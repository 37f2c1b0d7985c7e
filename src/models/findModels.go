package models

type FindModel struct {
	ID           int            `json:"id" gorm:"primaryKey;autoIncrement"`
	Building     int            `json:"building" gorm:"column:building;not null;index"`
	ObjType      *string        `json:"obj_type" gorm:"column:obj_type;type:varchar(64)"`
	MaterialType *string        `json:"material_type" gorm:"column:material_type;type:varchar(64)"`
	FileGroup    *string        `json:"f_group" gorm:"column:f_group;type:varchar(32);index"`
	Fragments    *int           `json:"fragments" gorm:"column:fragments"`
	Owner        *BuildingModel `json:"-" gorm:"foreignKey:Building;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (FindModel) TableName() string { return "finds" }
