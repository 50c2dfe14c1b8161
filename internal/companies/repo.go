package companies

import (
	"context"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
)

// Repository exposes company persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a companies repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new company and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateCompanyDTO) (*models.Company, error) {
	company := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// FindByID loads a visible company with its industry and owner.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Scopes(models.NotDeleted).
		Preload("Industry").
		Preload("User").
		First(&company, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Count returns the number of visible companies, optionally narrowed to one
// industry.
func (r *Repository) Count(ctx context.Context, industryID *int64) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Company{}).
		Scopes(models.NotDeleted)
	if industryID != nil {
		q = q.Where("industry_id = ?", *industryID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// List returns one page of visible companies ordered by name.
func (r *Repository) List(ctx context.Context, offset, limit int, industryID *int64) ([]models.Company, error) {
	q := r.db.WithContext(ctx).
		Scopes(models.NotDeleted).
		Preload("Industry").
		Preload("User")
	if industryID != nil {
		q = q.Where("industry_id = ?", *industryID)
	}
	var rows []models.Company
	err := q.Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the mutable fields of a company. Ownership never changes.
func (r *Repository) Update(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).
		Model(company).
		Select("name", "nip", "address", "city", "industry_id").
		Updates(map[string]any{
			"name":        company.Name,
			"nip":         company.NIP,
			"address":     company.Address,
			"city":        company.City,
			"industry_id": company.IndustryID,
		}).Error
}

// SoftDelete hides a company from every read path.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Company{}).
		Where("id = ?", id).
		UpdateColumn("is_deleted", true).Error
}
