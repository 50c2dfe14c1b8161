package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/internal/users"
	pkgAuth "github.com/crmbase-app/crmbase-backend/pkg/auth"
	"github.com/crmbase-app/crmbase-backend/pkg/auth/session"
	"github.com/crmbase-app/crmbase-backend/pkg/config"
	"github.com/crmbase-app/crmbase-backend/pkg/db"
	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/policy"
	"github.com/crmbase-app/crmbase-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	accountDeletedMessage     = "account deleted"
	loginOccupiedMessage      = "login occupied"

	defaultRoleName = "user"
	loginConstraint = "idx_users_login"
	dateLayout      = "2006-01-02"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
}

type sessionManager interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	users       userRepository
	tx          txRunner
	repoFactory func(tx *gorm.DB) userRepository
	sessions    sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	TxRunner       txRunner
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig

	repoFactory func(tx *gorm.DB) userRepository
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	factory := params.repoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) userRepository { return users.NewRepository(tx) }
	}
	return &service{
		users:       params.UserRepo,
		tx:          params.TxRunner,
		repoFactory: factory,
		sessions:    params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register opens an account with the default role and signs the user in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"login": "is required"})
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"date_of_birth": "must be a date in YYYY-MM-DD format"})
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)

		var roleID *int64
		role, err := repo.FindRoleByName(ctx, defaultRoleName)
		switch {
		case err == nil:
			id := role.ID
			roleID = &id
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Seed missing; the account starts without capabilities.
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup default role")
		}

		user, err = repo.Create(ctx, users.CreateUserDTO{
			Login:        login,
			PasswordHash: hash,
			Name:         req.Name,
			Surname:      req.Surname,
			DateOfBirth:  dob,
			RoleID:       roleID,
		})
		if err != nil {
			if db.IsUniqueViolation(err, loginConstraint) {
				return loginOccupiedError()
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
	}
	return s.issueToken(ctx, created)
}

// Login authenticates credentials. A deleted account is reported as such
// only when the password matches, so probing stays uninformative.
func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if user.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, accountDeletedMessage)
	}

	resp, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	resp.Redirect = safeRedirect(req.Redirect)
	return resp, nil
}

func loginOccupiedError() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"login": loginOccupiedMessage})
}

// safeRedirect keeps only local paths so the hint cannot point off-site.
func safeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return ""
	}
	return target
}

// Logout revokes the session behind the presented token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) issueToken(ctx context.Context, user *models.User) (*AuthResponse, error) {
	accessID := session.NewAccessID()
	if err := s.sessions.Create(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create session")
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:       user.ID,
		Login:        user.Login,
		Capabilities: policy.FromRole(user.Role),
		JTI:          accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &AuthResponse{
		AccessToken: token,
		User:        users.FromModel(user),
	}, nil
}
