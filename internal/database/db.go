package database

import (
	"github.com/Kyz7/hub/internal/config"
	"github.com/Kyz7/hub/internal/models"
	"github.com/gofiber/fiber/v2/log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	DB = db

	return db, nil
}

// Models lists every table the hub owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Role{},
		&models.Permission{},
		&models.User{},
		&models.RefreshToken{},
		&models.Page{},
		&models.Section{},
		&models.Content{},
		&models.TextItem{},
		&models.FileItem{},
		&models.ImageItem{},
		&models.VideoItem{},
		&models.URLItem{},
		&models.WorkflowHistory{},
		&models.Division{},
		&models.Branch{},
		&models.Person{},
		&models.Phone{},
		&models.Email{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Info("Database migrated successfully!")
	return nil
}
