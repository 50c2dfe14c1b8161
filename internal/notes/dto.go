package notes

import (
	"time"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
)

// AuthorDTO identifies the user who wrote a note.
type AuthorDTO struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// NoteDTO is the transport shape for a note row.
type NoteDTO struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	CompanyID *int64     `json:"company_id,omitempty"`
	Author    *AuthorDTO `json:"author,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateNoteRequest is the payload for attaching a note to a company.
type CreateNoteRequest struct {
	Content string `json:"content" validate:"required"`
}

// CreateNoteDTO holds the data required by the repo to persist a note.
type CreateNoteDTO struct {
	Content   string
	CompanyID int64
	AuthorID  int64
}

func (c CreateNoteDTO) ToModel() *models.Note {
	companyID := c.CompanyID
	authorID := c.AuthorID
	return &models.Note{
		Content:   c.Content,
		CompanyID: &companyID,
		UserID:    &authorID,
	}
}

func FromModel(m *models.Note) *NoteDTO {
	if m == nil {
		return nil
	}

	dto := &NoteDTO{
		ID:        m.ID,
		Content:   m.Content,
		CompanyID: m.CompanyID,
		CreatedAt: m.CreatedAt,
	}
	if m.User != nil {
		dto.Author = &AuthorDTO{ID: m.User.ID, Login: m.User.Login}
	}
	return dto
}
