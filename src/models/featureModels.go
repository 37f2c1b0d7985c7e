package models

type FeatureModel struct {
	ID          int            `json:"id" gorm:"primaryKey;autoIncrement"`
	Building    int            `json:"building" gorm:"column:building;not null;index"`
	Type        *string        `json:"type" gorm:"type:varchar(64)"`
	Description *string        `json:"description" gorm:"type:text"`
	Owner       *BuildingModel `json:"-" gorm:"foreignKey:Building;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (FeatureModel) TableName() string { return "features" }
