package contacts

import (
	"context"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
)

// Repository exposes contact person persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a contacts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new contact person and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateContactDTO) (*models.ContactPerson, error) {
	contact := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// FindByID loads a visible contact person.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.ContactPerson, error) {
	var contact models.ContactPerson
	err := r.db.WithContext(ctx).
		Scopes(models.NotDeleted).
		Preload("Company").
		First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// ListByCompany returns the visible contacts of a company ordered by surname.
func (r *Repository) ListByCompany(ctx context.Context, companyID int64) ([]models.ContactPerson, error) {
	var rows []models.ContactPerson
	err := r.db.WithContext(ctx).
		Scopes(models.NotDeleted).
		Where("company_id = ?", companyID).
		Order("surname ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchBySurname returns visible contacts whose surname matches exactly,
// with their company attached for display.
func (r *Repository) SearchBySurname(ctx context.Context, surname string) ([]models.ContactPerson, error) {
	var rows []models.ContactPerson
	err := r.db.WithContext(ctx).
		Scopes(models.NotDeleted).
		Preload("Company").
		Where("surname = ?", surname).
		Order("surname ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the editable fields. The owner and company stamps never
// change.
func (r *Repository) Update(ctx context.Context, contact *models.ContactPerson) error {
	return r.db.WithContext(ctx).
		Model(contact).
		Select("name", "surname", "phone", "mail").
		Updates(map[string]any{
			"name":    contact.Name,
			"surname": contact.Surname,
			"phone":   contact.Phone,
			"mail":    contact.Mail,
		}).Error
}

// SoftDelete hides a contact person from every read path.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.ContactPerson{}).
		Where("id = ?", id).
		UpdateColumn("is_deleted", true).Error
}
