package auth

import "github.com/crmbase-app/crmbase-backend/internal/users"

// RegisterRequest contains the payload required to open an account.
type RegisterRequest struct {
	Login       string `json:"login" validate:"required,max=30"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required,max=20"`
	Surname     string `json:"surname" validate:"required,max=30"`
	DateOfBirth string `json:"date_of_birth" validate:"required,dateonly"`
}

// LoginRequest contains the credentials presented at login. Redirect is an
// optional path the client wants to land on after signing in.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
	Redirect string `json:"redirect,omitempty" validate:"omitempty,max=200"`
}

// AuthResponse carries the minted token and the account it belongs to.
// Redirect echoes the login hint when it names a safe local path.
type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	User        *users.UserDTO `json:"user"`
	Redirect    string         `json:"redirect,omitempty"`
}
