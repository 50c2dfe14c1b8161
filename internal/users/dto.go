package users

import (
	"time"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
	"github.com/crmbase-app/crmbase-backend/pkg/pagination"
)

const dateLayout = "2006-01-02"

// RoleDTO is the transport shape for a role with its capability pair.
type RoleDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	IsModerator bool   `json:"is_moderator"`
	IsAdmin     bool   `json:"is_admin"`
}

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	DateOfBirth string    `json:"date_of_birth"`
	Role        *RoleDTO  `json:"role,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListUsersResponse is a single page of accounts.
type ListUsersResponse struct {
	Items []UserDTO       `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// UpdateUserRequest is the payload for editing an account. RoleID is only
// honored for admin actors.
type UpdateUserRequest struct {
	Login       string `json:"login" validate:"required,max=30"`
	Name        string `json:"name" validate:"required,max=20"`
	Surname     string `json:"surname" validate:"required,max=30"`
	DateOfBirth string `json:"date_of_birth" validate:"required,dateonly"`
	RoleID      *int64 `json:"role_id,omitempty"`
}

// BatchUserUpdate is one row of a batch edit.
type BatchUserUpdate struct {
	ID          int64  `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required,max=20"`
	Surname     string `json:"surname" validate:"required,max=30"`
	DateOfBirth string `json:"date_of_birth" validate:"required,dateonly"`
}

// BatchUpdateRequest edits several accounts in one request.
type BatchUpdateRequest struct {
	Updates []BatchUserUpdate `json:"updates" validate:"required,min=1,dive"`
}

// BatchUpdateResult reports the outcome for one row of a batch edit.
type BatchUpdateResult struct {
	ID    int64  `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BatchUpdateResponse carries the per-row outcomes of a batch edit.
type BatchUpdateResponse struct {
	Results []BatchUpdateResult `json:"results"`
}

// ChangePasswordRequest is the payload for rotating the actor's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePasswordResponse returns the replacement token after the old
// session is revoked.
type ChangePasswordResponse struct {
	AccessToken string `json:"access_token"`
}

// CreateUserDTO holds the data required by the repo to persist an account.
type CreateUserDTO struct {
	Login        string
	PasswordHash string
	Name         string
	Surname      string
	DateOfBirth  time.Time
	RoleID       *int64
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Login:        c.Login,
		PasswordHash: c.PasswordHash,
		Name:         c.Name,
		Surname:      c.Surname,
		DateOfBirth:  c.DateOfBirth,
		RoleID:       c.RoleID,
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	dto := &UserDTO{
		ID:          u.ID,
		Login:       u.Login,
		Name:        u.Name,
		Surname:     u.Surname,
		DateOfBirth: u.DateOfBirth.Format(dateLayout),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.Role != nil {
		dto.Role = &RoleDTO{
			ID:          u.Role.ID,
			Name:        u.Role.Name,
			IsModerator: u.Role.IsModerator,
			IsAdmin:     u.Role.IsAdmin,
		}
	}
	return dto
}
