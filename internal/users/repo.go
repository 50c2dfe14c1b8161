package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
)

// Repository exposes user and role persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByLogin retrieves the user matching the provided login. Deleted rows
// are included so login checks can tell a dead account from a free login.
func (r *Repository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("login = ?", login).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a visible user with their role.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Scopes(models.NotDeleted).
		Preload("Role").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Count returns the number of visible accounts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(models.NotDeleted).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// List returns one page of visible accounts ordered by login.
func (r *Repository) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Scopes(models.NotDeleted).
		Preload("Role").
		Order("login ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the editable profile fields of a user.
func (r *Repository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Model(user).
		Updates(map[string]any{
			"login":         user.Login,
			"name":          user.Name,
			"surname":       user.Surname,
			"date_of_birth": user.DateOfBirth,
			"role_id":       user.RoleID,
		}).Error
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", passwordHash).Error
}

// SoftDelete hides an account from every read path.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("is_deleted", true).Error
}

// FindRoleByID loads a role.
func (r *Repository) FindRoleByID(ctx context.Context, id int64) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// FindRoleByName loads a role by its unique name.
func (r *Repository) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
