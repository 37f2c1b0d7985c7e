package models

// CounterModel is a named, persisted sequence used where ids must be known
// before the row they name is written.
type CounterModel struct {
	Name  string `json:"name" gorm:"primaryKey;type:varchar(32)"`
	Value int    `json:"value" gorm:"not null;default:0"`
}

func (CounterModel) TableName() string { return "counters" }

const (
	CounterBuildings = "buildings"
	CounterFiles     = "files"
)
