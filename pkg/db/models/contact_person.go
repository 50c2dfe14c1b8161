package models

import "time"

type ContactPerson struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:30;not null"`
	Surname   string    `gorm:"size:40;not null;index"`
	Phone     string    `gorm:"size:9;not null"`
	Mail      string    `gorm:"size:254;not null"`
	CompanyID *int64    `gorm:"column:company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
	UserID    *int64    `gorm:"column:user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	IsDeleted bool      `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ContactPerson) TableName() string { return "contact_people" }
