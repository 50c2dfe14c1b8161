package users

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	pkgAuth "github.com/crmbase-app/crmbase-backend/pkg/auth"
	"github.com/crmbase-app/crmbase-backend/pkg/auth/session"
	"github.com/crmbase-app/crmbase-backend/pkg/config"
	"github.com/crmbase-app/crmbase-backend/pkg/db"
	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/pagination"
	"github.com/crmbase-app/crmbase-backend/pkg/policy"
	"github.com/crmbase-app/crmbase-backend/pkg/security"
)

const loginConstraint = "idx_users_login"

// Service defines the behavior needed by the users controller.
type Service interface {
	List(ctx context.Context, page int) (*ListUsersResponse, error)
	Get(ctx context.Context, actorID int64, caps policy.Capabilities, targetID int64) (*UserDTO, error)
	Update(ctx context.Context, actorID int64, caps policy.Capabilities, targetID int64, req UpdateUserRequest) (*UserDTO, error)
	BatchUpdate(ctx context.Context, req BatchUpdateRequest) (*BatchUpdateResponse, error)
	Delete(ctx context.Context, actorID int64, caps policy.Capabilities, accessID string, targetID int64) (bool, error)
	ChangePassword(ctx context.Context, actorID int64, accessID string, req ChangePasswordRequest) (*ChangePasswordResponse, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SoftDelete(ctx context.Context, id int64) error
	FindRoleByID(ctx context.Context, id int64) (*models.Role, error)
}

type sessionManager interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	repo        userRepository
	sessions    sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	pageSize    int
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	PageSize       int
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &service{
		repo:        params.Repo,
		sessions:    params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		pageSize:    pageSize,
	}, nil
}

func (s *service) List(ctx context.Context, page int) (*ListUsersResponse, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}

	meta := pagination.Resolve(page, s.pageSize, total)
	rows, err := s.repo.List(ctx, meta.Offset(), s.pageSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListUsersResponse{Items: items, Meta: meta}, nil
}

func (s *service) Get(ctx context.Context, actorID int64, caps policy.Capabilities, targetID int64) (*UserDTO, error) {
	if !caps.CanAccessUser(actorID, targetID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you may only view your own account")
	}
	user, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, actorID int64, caps policy.Capabilities, targetID int64, req UpdateUserRequest) (*UserDTO, error) {
	if !caps.CanAccessUser(actorID, targetID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you may only edit your own account")
	}

	user, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"date_of_birth": "must be a date in YYYY-MM-DD format"})
	}

	// Omitting role_id leaves the role untouched.
	if req.RoleID != nil && roleChanged(user.RoleID, req.RoleID) {
		if !caps.CanAssignRoles() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may change roles")
		}
		if _, err := s.repo.FindRoleByID(ctx, *req.RoleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
					WithDetails(map[string]string{"role_id": "role does not exist"})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup role")
		}
		user.RoleID = req.RoleID
	}

	user.Login = req.Login
	user.Name = req.Name
	user.Surname = req.Surname
	user.DateOfBirth = dob

	if err := s.repo.Update(ctx, user); err != nil {
		if db.IsUniqueViolation(err, loginConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"login": "login occupied"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}

	updated, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// BatchUpdate edits several accounts in one pass. A failing row does not
// abort the rest; each outcome is reported separately.
func (s *service) BatchUpdate(ctx context.Context, req BatchUpdateRequest) (*BatchUpdateResponse, error) {
	results := make([]BatchUpdateResult, 0, len(req.Updates))
	for _, update := range req.Updates {
		results = append(results, s.applyBatchRow(ctx, update))
	}
	return &BatchUpdateResponse{Results: results}, nil
}

func (s *service) applyBatchRow(ctx context.Context, update BatchUserUpdate) BatchUpdateResult {
	user, err := s.repo.FindByID(ctx, update.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BatchUpdateResult{ID: update.ID, Error: "user not found"}
		}
		return BatchUpdateResult{ID: update.ID, Error: "lookup failed"}
	}

	dob, err := time.Parse(dateLayout, update.DateOfBirth)
	if err != nil {
		return BatchUpdateResult{ID: update.ID, Error: "date_of_birth must be a date in YYYY-MM-DD format"}
	}

	user.Name = update.Name
	user.Surname = update.Surname
	user.DateOfBirth = dob

	if err := s.repo.Update(ctx, user); err != nil {
		return BatchUpdateResult{ID: update.ID, Error: "update failed"}
	}
	return BatchUpdateResult{ID: update.ID, OK: true}
}

// Delete soft-deletes an account. Deleting your own account also revokes
// the session behind the presented token.
func (s *service) Delete(ctx context.Context, actorID int64, caps policy.Capabilities, accessID string, targetID int64) (bool, error) {
	if !caps.CanAccessUser(actorID, targetID) {
		return false, pkgerrors.New(pkgerrors.CodeForbidden, "you may only delete your own account")
	}
	if _, err := s.findUser(ctx, targetID); err != nil {
		return false, err
	}
	if err := s.repo.SoftDelete(ctx, targetID); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}

	selfDeleted := actorID == targetID
	if selfDeleted && accessID != "" {
		if err := s.sessions.Revoke(ctx, accessID); err != nil {
			return true, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
		}
	}
	return selfDeleted, nil
}

// ChangePassword rotates the actor's password and replaces their session,
// so the old token stops working immediately.
func (s *service) ChangePassword(ctx context.Context, actorID int64, accessID string, req ChangePasswordRequest) (*ChangePasswordResponse, error) {
	user, err := s.findUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	valid, err := security.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"current_password": "current password is incorrect"})
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePassword(ctx, actorID, hash); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	if accessID != "" {
		if err := s.sessions.Revoke(ctx, accessID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
		}
	}

	newAccessID := session.NewAccessID()
	if err := s.sessions.Create(ctx, newAccessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create session")
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:       user.ID,
		Login:        user.Login,
		Capabilities: policy.FromRole(user.Role),
		JTI:          newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &ChangePasswordResponse{AccessToken: token}, nil
}

func (s *service) findUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}

func roleChanged(current, requested *int64) bool {
	if current == nil && requested == nil {
		return false
	}
	if current == nil || requested == nil {
		return true
	}
	return *current != *requested
}
