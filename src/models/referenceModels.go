package models

type ReferenceModel struct {
	ID          int     `json:"id" gorm:"primaryKey;autoIncrement"`
	Reference   string  `json:"reference" gorm:"type:text;not null"`
	Description string  `json:"description" gorm:"type:text;not null"`
	DOI         *string `json:"doi" gorm:"column:doi;type:varchar(255)"`
}

func (ReferenceModel) TableName() string { return "refs" }
