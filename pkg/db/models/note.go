package models

import "time"

type Note struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Content   string    `gorm:"type:text;not null"`
	CompanyID *int64    `gorm:"column:company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
	UserID    *int64    `gorm:"column:user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	IsDeleted bool      `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Note) TableName() string { return "notes" }
