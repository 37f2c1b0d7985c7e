package models

type UserModel struct {
	ID       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"column:username;type:varchar(256);not null;uniqueIndex"`
	Email    string `json:"email" gorm:"column:email;type:varchar(256);not null;uniqueIndex"`
	Password string `json:"-" gorm:"type:varchar(100);not null"`
	Admin    bool   `json:"admin" gorm:"not null;default:false"`
}

func (UserModel) TableName() string { return "users" }
