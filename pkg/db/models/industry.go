package models

type Industry struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:30;not null;uniqueIndex"`
}

func (Industry) TableName() string { return "industries" }
