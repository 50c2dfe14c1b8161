package models

import "gorm.io/gorm"

// NotDeleted is the shared soft-delete scope. Every listing, search, and
// detail query goes through it so hidden rows never leak.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}
