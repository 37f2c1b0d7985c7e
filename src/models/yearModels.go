package models

type YearModel struct {
	Year        int     `json:"year" gorm:"primaryKey;autoIncrement:false"`
	Image       *string `json:"image" gorm:"type:text"`
	Description *string `json:"description" gorm:"type:text"`
}

func (YearModel) TableName() string { return "years" }
