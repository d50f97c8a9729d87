package server

import (
	"github.com/Kyz7/hub/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func New(db *gorm.DB, store storage.Storage, corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 100 * 1024 * 1024,
	})

	if local, ok := store.(*storage.Local); ok {
		app.Static("/uploads", local.Dir(), fiber.Static{
			Compress:  true,
			ByteRange: true,
			Browse:    false,
			MaxAge:    3600,
		})
	}

	SetupRoutes(app, db, store, corsOrigins)

	return app
}
