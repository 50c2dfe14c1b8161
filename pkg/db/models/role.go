package models

// Role carries the explicit capability pair instead of inferring privilege
// from role absence or a magic role name.
type Role struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:30;not null;uniqueIndex"`
	IsModerator bool   `gorm:"column:is_moderator;not null;default:false"`
	IsAdmin     bool   `gorm:"column:is_admin;not null;default:false"`
}

func (Role) TableName() string { return "roles" }
