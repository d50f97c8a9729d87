package user

import (
	"context"
	"errors"
	"strings"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/Kyz7/hub/internal/auth"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/utils"
	"gorm.io/gorm"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type CreateInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	RoleID   uint   `json:"role_id"`
}

// UpdateInput leaves empty fields unchanged.
type UpdateInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
	RoleID uint   `json:"role_id"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource)
	}
	return err
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Preload("Role").Order("name").Find(&users).Error
	return users, err
}

func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Preload("Role.Permissions").First(&u, id).Error; err != nil {
		return nil, notFound(err, "User")
	}
	return &u, nil
}

// emailTaken includes deleted users: their emails stay in the unique index.
func emailTaken(tx *gorm.DB, email string, exclude uint) error {
	var count int64
	if err := tx.Unscoped().Model(&models.User{}).Where("email = ? AND id <> ?", email, exclude).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("User with this email already exists")
	}
	return nil
}

// Create stores a new active user. A zero RoleID means viewer.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	details := map[string]string{}
	if strings.TrimSpace(in.Email) == "" {
		details["email"] = "email is required"
	}
	if in.Password == "" {
		details["password"] = "password is required"
	}
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = "name is required"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("Validation failed", details)
	}

	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := emailTaken(tx, in.Email, 0); err != nil {
			return err
		}

		var role models.Role
		query := tx.Where("name = ?", "viewer")
		if in.RoleID != 0 {
			query = tx.Where("id = ?", in.RoleID)
		}
		if err := query.First(&role).Error; err != nil {
			return notFound(err, "Role")
		}

		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return err
		}
		u := models.User{
			Email:    in.Email,
			Name:     in.Name,
			Password: hash,
			Provider: "local",
			Status:   StatusActive,
			RoleID:   role.ID,
		}
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		id = u.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update applies in. Deactivating a user also revokes their refresh tokens;
// access tokens stop working on the next request because the principal is
// reloaded and checked every time.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.User, error) {
	switch in.Status {
	case "", StatusActive, StatusInactive:
	default:
		return nil, apperror.Validation("Validation failed", map[string]string{
			"status": "status must be active or inactive",
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, id).Error; err != nil {
			return notFound(err, "User")
		}

		changes := map[string]interface{}{}
		if in.Name != "" {
			changes["name"] = in.Name
		}
		if in.Email != "" && in.Email != u.Email {
			if err := emailTaken(tx, in.Email, id); err != nil {
				return err
			}
			changes["email"] = in.Email
		}
		if in.Status != "" {
			changes["status"] = in.Status
		}
		if in.RoleID != 0 {
			var role models.Role
			if err := tx.First(&role, in.RoleID).Error; err != nil {
				return notFound(err, "Role")
			}
			changes["role_id"] = in.RoleID
		}
		if len(changes) > 0 {
			if err := tx.Model(&u).Updates(changes).Error; err != nil {
				return err
			}
		}

		if in.Status == StatusInactive {
			_, err := auth.RevokeRefreshTokens(tx, id)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the user and revokes their refresh tokens. Nobody can
// delete themselves.
func (s *Service) Delete(ctx context.Context, principal *models.User, id uint) error {
	if principal != nil && principal.ID == id {
		return apperror.InvalidState("Cannot delete your own account")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, id).Error; err != nil {
			return notFound(err, "User")
		}
		if _, err := auth.RevokeRefreshTokens(tx, id); err != nil {
			return err
		}
		return tx.Delete(&u).Error
	})
}
