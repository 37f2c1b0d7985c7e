package models

// File kinds double as their route prefix, so href is "/<kind>/<n>".
const (
	FileKindCSV   = "csv"
	FileKindPDF   = "pdf"
	FileKindImage = "images"
)

type SharedFileModel struct {
	ID         int     `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind       string  `json:"-" gorm:"type:varchar(16);not null;uniqueIndex:idx_files_kind_tag"`
	Tag        string  `json:"tag" gorm:"type:varchar(255);not null;uniqueIndex:idx_files_kind_tag"`
	FileGroup  *string `json:"f_group,omitempty" gorm:"column:f_group;type:varchar(32);index"`
	MajorGroup string  `json:"major_group" gorm:"column:major_group;type:varchar(32);not null"`
	Href       string  `json:"href" gorm:"type:varchar(64);not null;uniqueIndex"`
}

func (SharedFileModel) TableName() string { return "files" }
