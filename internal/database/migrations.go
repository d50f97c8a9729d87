package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

type Migration struct {
	ID        uint   `gorm:"primaryKey"`
	Version   string `gorm:"uniqueIndex;size:255"`
	AppliedAt time.Time
}

// RunMigrations applies every *.sql file in dir that has not been recorded
// yet, in file name order. Each file runs in its own transaction.
func RunMigrations(db *gorm.DB, dir string) error {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		filename := filepath.Base(file)

		var existing Migration
		err := db.Where("version = ?", filename).First(&existing).Error
		if err == nil {
			log.Debugf("⏭️  Skipping migration: %s (already applied)", filename)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sqlContent, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		log.Infof("▶️  Applying migration: %s", filename)
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(sqlContent)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", filename, err)
			}
			return tx.Create(&Migration{Version: filename, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return err
		}

		log.Infof("✅ Applied migration: %s", filename)
	}

	return nil
}

func GetAppliedMigrations(db *gorm.DB) ([]Migration, error) {
	var migrations []Migration
	if err := db.Order("applied_at DESC").Find(&migrations).Error; err != nil {
		return nil, err
	}
	return migrations, nil
}
