package contacts

import (
	"time"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
)

// CompanyRef names the company a contact person belongs to.
type CompanyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ContactDTO is the transport shape for a contact person.
type ContactDTO struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Surname   string      `json:"surname"`
	Phone     string      `json:"phone"`
	Mail      string      `json:"mail"`
	Company   *CompanyRef `json:"company,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateContactRequest is the payload for adding a contact person.
type CreateContactRequest struct {
	Name    string `json:"name" validate:"required,max=30"`
	Surname string `json:"surname" validate:"required,max=40"`
	Phone   string `json:"phone" validate:"required,max=9,numeric"`
	Mail    string `json:"mail" validate:"required,email,max=254"`
}

// CreateContactDTO holds the data required by the repo to persist a contact.
type CreateContactDTO struct {
	Name      string
	Surname   string
	Phone     string
	Mail      string
	CompanyID int64
	OwnerID   int64
}

func (c CreateContactDTO) ToModel() *models.ContactPerson {
	companyID := c.CompanyID
	ownerID := c.OwnerID
	return &models.ContactPerson{
		Name:      c.Name,
		Surname:   c.Surname,
		Phone:     c.Phone,
		Mail:      c.Mail,
		CompanyID: &companyID,
		UserID:    &ownerID,
	}
}

func FromModel(m *models.ContactPerson) *ContactDTO {
	if m == nil {
		return nil
	}

	dto := &ContactDTO{
		ID:        m.ID,
		Name:      m.Name,
		Surname:   m.Surname,
		Phone:     m.Phone,
		Mail:      m.Mail,
		CreatedAt: m.CreatedAt,
	}
	if m.Company != nil {
		dto.Company = &CompanyRef{ID: m.Company.ID, Name: m.Company.Name}
	}
	return dto
}
