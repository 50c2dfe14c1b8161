package industries

import (
	"context"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
)

// IndustryDTO is the transport shape for industry dictionary entries.
type IndustryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Repository exposes the industry dictionary.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an industries repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every industry ordered by name.
func (r *Repository) List(ctx context.Context) ([]IndustryDTO, error) {
	var rows []models.Industry
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]IndustryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, IndustryDTO{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

// FindByID loads a single industry.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Industry, error) {
	var row models.Industry
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
