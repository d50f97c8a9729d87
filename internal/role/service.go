package role

import (
	"context"
	"errors"
	"strings"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/Kyz7/hub/internal/middleware"
	"github.com/Kyz7/hub/internal/models"
	"gorm.io/gorm"
)

type PermissionInput struct {
	Module string `json:"module"`
	Action string `json:"action"`
}

func (p PermissionInput) toModel(roleID uint) models.Permission {
	module := p.Module
	if module == "" {
		module = models.HubModule
	}
	return models.Permission{RoleID: roleID, Module: module, Action: p.Action}
}

type Input struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Permissions []PermissionInput `json:"permissions"`
}

// validate checks the permission list. Hub permissions must name a
// capability the hub actually checks; other modules are stored as given.
func (in Input) validate() error {
	details := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = "role name is required"
	}
	for _, p := range in.Permissions {
		if p.Action == "" {
			details["permissions"] = "every permission needs an action"
			break
		}
		if (p.Module == "" || p.Module == models.HubModule) && !models.IsHubCapability(p.Action) {
			details["permissions"] = "unknown hub capability: " + p.Action
			break
		}
	}
	if len(details) > 0 {
		return apperror.Validation("Validation failed", details)
	}
	return nil
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).Preload("Permissions").Order("name").Find(&roles).Error
	return roles, err
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Role, error) {
	return load(s.db.WithContext(ctx), id)
}

func load(tx *gorm.DB, id uint) (*models.Role, error) {
	var role models.Role
	if err := tx.Preload("Permissions").First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Role")
		}
		return nil, err
	}
	return &role, nil
}

// nameTaken includes deleted roles: their names stay in the unique index.
func nameTaken(tx *gorm.DB, name string, exclude uint) error {
	var count int64
	if err := tx.Unscoped().Model(&models.Role{}).Where("name = ? AND id <> ?", name, exclude).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("Role with this name already exists")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Role, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created *models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nameTaken(tx, in.Name, 0); err != nil {
			return err
		}
		role := models.Role{Name: in.Name, Description: in.Description}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		if err := grant(tx, role.ID, in.Permissions); err != nil {
			return err
		}
		var err error
		created, err = load(tx, role.ID)
		return err
	})
	return created, err
}

// Update renames the role and replaces its permission set.
func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Role, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := load(tx, id)
		if err != nil {
			return err
		}
		// Admin is matched by name, so it keeps it.
		if role.Name == middleware.AdminRole && in.Name != middleware.AdminRole {
			return apperror.Validation("The admin role cannot be renamed", map[string]string{"name": in.Name})
		}
		if err := nameTaken(tx, in.Name, id); err != nil {
			return err
		}

		if err := tx.Model(role).Omit("Permissions").Updates(map[string]interface{}{
			"name":        in.Name,
			"description": in.Description,
		}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("role_id = ?", id).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		if err := grant(tx, id, in.Permissions); err != nil {
			return err
		}
		updated, err = load(tx, id)
		return err
	})
	return updated, err
}

// Delete removes a role nobody holds, with its permissions.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := load(tx, id)
		if err != nil {
			return err
		}
		if role.Name == middleware.AdminRole {
			return apperror.InvalidState("The admin role cannot be deleted")
		}

		var holders int64
		if err := tx.Model(&models.User{}).Where("role_id = ?", id).Count(&holders).Error; err != nil {
			return err
		}
		if holders > 0 {
			return apperror.Conflict("Cannot delete role that is assigned to users")
		}

		if err := tx.Where("role_id = ?", id).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, id).Error
	})
}

// Duplicate copies a role's permissions under a new name.
func (s *Service) Duplicate(ctx context.Context, id uint, name string) (*models.Role, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	perms := make([]PermissionInput, 0, len(original.Permissions))
	for _, p := range original.Permissions {
		perms = append(perms, PermissionInput{Module: p.Module, Action: p.Action})
	}
	return s.Create(ctx, Input{
		Name:        name,
		Description: original.Description + " (Copy)",
		Permissions: perms,
	})
}

// Assign gives the user a role. The change applies to the user's next
// request since the principal is reloaded every time.
func (s *Service) Assign(ctx context.Context, userID, roleID uint) (*models.User, error) {
	if userID == 0 || roleID == 0 {
		return nil, apperror.Validation("Validation failed", map[string]string{
			"user_id": "user_id is required",
			"role_id": "role_id is required",
		})
	}

	db := s.db.WithContext(ctx)
	if _, err := load(db, roleID); err != nil {
		return nil, err
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User")
		}
		return nil, err
	}
	if err := db.Model(&user).Update("role_id", roleID).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Role.Permissions").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func grant(tx *gorm.DB, roleID uint, perms []PermissionInput) error {
	for _, p := range perms {
		perm := p.toModel(roleID)
		if err := tx.Create(&perm).Error; err != nil {
			return err
		}
	}
	return nil
}
