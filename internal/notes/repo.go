package notes

import (
	"context"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
)

// Repository exposes note persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a notes repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new note and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateNoteDTO) (*models.Note, error) {
	note := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

// FindByID loads a visible note with its author.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).
		Scopes(models.NotDeleted).
		Preload("User").
		First(&note, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListByCompany returns the visible notes of a company, newest first.
func (r *Repository) ListByCompany(ctx context.Context, companyID int64) ([]models.Note, error) {
	var rows []models.Note
	err := r.db.WithContext(ctx).
		Scopes(models.NotDeleted).
		Preload("User").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the note body. The author and company stamps never change.
func (r *Repository) Update(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).
		Model(note).
		Select("content").
		Updates(map[string]any{"content": note.Content}).Error
}

// SoftDelete hides a note from every read path.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ?", id).
		UpdateColumn("is_deleted", true).Error
}
