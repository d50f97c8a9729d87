package main

import (
	"strings"
	"time"

	"github.com/Kyz7/hub/internal/auth"
	"github.com/Kyz7/hub/internal/config"
	"github.com/Kyz7/hub/internal/database"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/role"
	"github.com/Kyz7/hub/internal/server"
	"github.com/Kyz7/hub/internal/storage"
	"github.com/Kyz7/hub/internal/utils"
	"github.com/gofiber/fiber/v2/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Configuration error: ", err)
	}

	if err := utils.ValidateJWTSecret(cfg.JWTSecret); err != nil {
		log.Fatal("❌ JWT Configuration Error: ", err)
	}
	utils.SetJWTSecret(cfg.JWTSecret)
	log.Info("✅ JWT secret validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed: ", err)
	}
	database.DB = db

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Info("✅ Database migrated successfully")

	// ========== RUN SQL MIGRATIONS (ORDERING AND TITLE INDEXES) ==========
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Warnf("⚠️  SQL migrations failed: %v", err)
		log.Warn("⚠️  Ordering queries may be slow and duplicate titles are only checked in the application")
	} else {
		log.Info("✅ SQL migrations completed successfully")
	}

	// ========== STORAGE SETUP ==========
	var store storage.Storage
	if cfg.UseS3() {
		s3Store, err := storage.NewS3(cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			log.Fatal("❌ S3 initialization failed: ", err)
		}
		log.Infof("☁️  Using S3: %s (region: %s)", cfg.S3Bucket, cfg.S3Region)
		store = s3Store
	} else {
		local, err := storage.NewLocal(cfg.UploadDir)
		if err != nil {
			log.Fatal("❌ Failed to initialize local storage: ", err)
		}
		log.Infof("💾 Using LOCAL storage mode (%s)", local.Dir())
		store = local
	}

	// ========== SEED DEFAULT DATA ==========
	if err := role.SeedDefaultRoles(db); err != nil {
		log.Warnf("⚠️  Failed to seed roles: %v", err)
	} else {
		log.Info("✅ Default roles seeded")
	}

	auth.ConfigureGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if cfg.GoogleClientID == "" {
		log.Warn("⚠️  GOOGLE_CLIENT_ID not set, Google sign-in will fail")
	}

	// ========== BACKGROUND JOBS ==========
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			result := db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
			if result.RowsAffected > 0 {
				log.Infof("🧹 Cleaned up %d expired refresh tokens", result.RowsAffected)
			}
		}
	}()

	// ========== START SERVER ==========
	app := server.New(db, store, strings.Join(cfg.CORSOrigins, ","))

	log.Infof("🚀 Hub server starting on %s", cfg.ServerAddr)
	log.Infof("💾 Storage Mode: %s", store.Mode())
	log.Info("🔐 JWT Authentication: Enabled")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server: ", err)
	}
}
