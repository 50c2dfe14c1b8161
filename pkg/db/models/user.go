package models

import "time"

// User represents an account. Rows are never physically removed; IsDeleted
// hides them from every read path.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Login        string    `gorm:"size:30;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Name         string    `gorm:"size:20;not null"`
	Surname      string    `gorm:"size:30;not null"`
	DateOfBirth  time.Time `gorm:"column:date_of_birth;type:date;not null"`
	RoleID       *int64    `gorm:"column:role_id"`
	Role         *Role     `gorm:"foreignKey:RoleID;constraint:OnDelete:SET NULL"`
	IsDeleted    bool      `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
