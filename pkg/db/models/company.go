package models

import "time"

// Company is owned by the user who created it. The NIP (tax id) is unique
// across deleted and live rows alike.
type Company struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Name       string    `gorm:"size:30;not null"`
	NIP        string    `gorm:"column:nip;size:10;not null;uniqueIndex"`
	Address    string    `gorm:"size:100;not null"`
	City       string    `gorm:"size:40;not null"`
	IndustryID *int64    `gorm:"column:industry_id"`
	Industry   *Industry `gorm:"foreignKey:IndustryID;constraint:OnDelete:SET NULL"`
	UserID     *int64    `gorm:"column:user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	IsDeleted  bool      `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Company) TableName() string { return "companies" }
