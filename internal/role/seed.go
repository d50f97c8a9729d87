package role

import (
	"github.com/Kyz7/hub/internal/models"
	"gorm.io/gorm"
)

func hub(actions ...string) []models.Permission {
	perms := make([]models.Permission, 0, len(actions))
	for _, a := range actions {
		perms = append(perms, models.Permission{Module: models.HubModule, Action: a})
	}
	return perms
}

type seedRole struct {
	name        string
	description string
	perms       []models.Permission
}

// DefaultRoles are the hub roles created on start-up. Admin needs no rows:
// it passes every capability check.
var DefaultRoles = []seedRole{
	{
		name:        "editor",
		description: "Drafts pages, sections and content and requests updates",
		perms: hub(
			models.CapAddPage, models.CapChangePage,
			models.CapAddSection, models.CapReorderSection,
			models.CapAddContent, models.CapReorderContent,
			"request_update", "request_update_en", "request_update_uk",
		),
	},
	{
		name:        "reviewer_en",
		description: "Confirms or rejects English updates and single-field items",
		perms: hub(
			"confirm_update_en", "reject_update_en",
			"confirm_update", "reject_update",
		),
	},
	{
		name:        "reviewer_uk",
		description: "Confirms or rejects Ukrainian updates",
		perms:       hub("confirm_update_uk", "reject_update_uk"),
	},
	{
		name:        "publisher",
		description: "Publishes sections and shows or hides content",
		perms: hub(
			models.CapPublishSection, models.CapUnpublishSection, models.CapDeleteSection,
			models.CapDisplayContent, models.CapHideContent, models.CapDeleteContent,
			models.CapDeletePage,
		),
	},
	{
		name:        "location_manager",
		description: "Maintains divisions and branches",
		perms:       hub(models.CapManageLocations),
	},
	{name: "viewer", description: "Read-only access"},
	{name: "admin", description: "Full access to all resources"},
}

// SeedDefaultRoles creates missing default roles and adds any capability a
// role lacks. Existing extra permissions are left alone.
func SeedDefaultRoles(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, def := range DefaultRoles {
			role := models.Role{Name: def.name}
			if err := tx.Where(&role).Attrs(models.Role{Description: def.description}).FirstOrCreate(&role).Error; err != nil {
				return err
			}

			for _, p := range def.perms {
				var count int64
				if err := tx.Model(&models.Permission{}).
					Where("role_id = ? AND module = ? AND action = ?", role.ID, p.Module, p.Action).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue
				}
				p.RoleID = role.ID
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
