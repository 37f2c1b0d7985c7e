package models

// BuildingModel is a building phase. Start and End are stored on decade
// boundaries and the building is active for start <= year < end.
type BuildingModel struct {
	ID          int        `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Phase       string     `json:"phase" gorm:"type:varchar(32);not null"`
	Start       int        `json:"start" gorm:"column:start_year;not null;index"`
	End         int        `json:"end" gorm:"column:end_year;not null;index"`
	Path        *string    `json:"path" gorm:"type:text"`
	Description *string    `json:"description" gorm:"type:text"`
	English     *string    `json:"en" gorm:"column:english;type:varchar(64)"`
	Icelandic   *string    `json:"is" gorm:"column:icelandic;type:varchar(64)"`
	Image       *string    `json:"image" gorm:"type:text"`
	FirstYear   *YearModel `json:"-" gorm:"foreignKey:Start;references:Year;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	LastYear    *YearModel `json:"-" gorm:"foreignKey:End;references:Year;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (BuildingModel) TableName() string { return "buildings" }
