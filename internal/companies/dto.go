package companies

import (
	"time"

	"github.com/crmbase-app/crmbase-backend/internal/contacts"
	"github.com/crmbase-app/crmbase-backend/internal/industries"
	"github.com/crmbase-app/crmbase-backend/internal/notes"
	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
	"github.com/crmbase-app/crmbase-backend/pkg/pagination"
)

// OwnerDTO identifies the user who created a record.
type OwnerDTO struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// CompanyDTO is the transport shape for a company row.
type CompanyDTO struct {
	ID        int64                   `json:"id"`
	Name      string                  `json:"name"`
	NIP       string                  `json:"nip"`
	Address   string                  `json:"address"`
	City      string                  `json:"city"`
	Industry  *industries.IndustryDTO `json:"industry,omitempty"`
	Owner     *OwnerDTO               `json:"owner,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// CompanyDetailDTO carries a company together with its visible notes and
// contact people.
type CompanyDetailDTO struct {
	CompanyDTO
	Notes    []notes.NoteDTO       `json:"notes"`
	Contacts []contacts.ContactDTO `json:"contacts"`
}

// ListCompaniesResponse is a single page of companies.
type ListCompaniesResponse struct {
	Items []CompanyDTO    `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// CreateCompanyRequest is the payload for creating a company.
type CreateCompanyRequest struct {
	Name       string `json:"name" validate:"required,max=30"`
	NIP        string `json:"nip" validate:"required,len=10,numeric"`
	Address    string `json:"address" validate:"required,max=100"`
	City       string `json:"city" validate:"required,max=40"`
	IndustryID *int64 `json:"industry_id,omitempty"`
}

// UpdateCompanyRequest is the payload for editing a company. Ownership is
// stamped at creation and never changes on edit.
type UpdateCompanyRequest struct {
	Name       string `json:"name" validate:"required,max=30"`
	NIP        string `json:"nip" validate:"required,len=10,numeric"`
	Address    string `json:"address" validate:"required,max=100"`
	City       string `json:"city" validate:"required,max=40"`
	IndustryID *int64 `json:"industry_id,omitempty"`
}

// CreateCompanyDTO holds the data required by the repo to persist a company.
type CreateCompanyDTO struct {
	Name       string
	NIP        string
	Address    string
	City       string
	IndustryID *int64
	OwnerID    int64
}

func (c CreateCompanyDTO) ToModel() *models.Company {
	ownerID := c.OwnerID
	return &models.Company{
		Name:       c.Name,
		NIP:        c.NIP,
		Address:    c.Address,
		City:       c.City,
		IndustryID: c.IndustryID,
		UserID:     &ownerID,
	}
}

func FromModel(m *models.Company) *CompanyDTO {
	if m == nil {
		return nil
	}

	dto := &CompanyDTO{
		ID:        m.ID,
		Name:      m.Name,
		NIP:       m.NIP,
		Address:   m.Address,
		City:      m.City,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Industry != nil {
		dto.Industry = &industries.IndustryDTO{ID: m.Industry.ID, Name: m.Industry.Name}
	}
	if m.User != nil {
		dto.Owner = &OwnerDTO{ID: m.User.ID, Login: m.User.Login}
	}
	return dto
}
