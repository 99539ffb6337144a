package database

import (
	"errors"
	"time"

	"github.com/TLChilton/Milestone-2/internal/catalog"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationSeedStarterCatalog = "2026-08-14_seed_starter_catalog"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationSeedStarterCatalog, apply: seedStarterCatalog},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// seedStarterCatalog loads the initial set of public-domain titles. Rating
// aggregates start at zero; the first submitted rating becomes the average.
func seedStarterCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&catalog.Entry{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	entries := []catalog.Entry{
		{ISBN: "111", Title: "Dracula", Author: "Bram Stoker", FileName: "dracula.pdf"},
		{ISBN: "222", Title: "Frankenstein", Author: "Mary Shelley", FileName: "frankenstein.pdf"},
		{ISBN: "333", Title: "Moby Dick", Author: "Herman Melville", FileName: "mobydick.pdf"},
		{ISBN: "444", Title: "Pride and Prejudice", Author: "Jane Austen", FileName: "prideandprejudice.pdf"},
		{ISBN: "555", Title: "The Time Machine", Author: "H. G. Wells", FileName: "thetimemachine.pdf"},
	}
	return db.Create(&entries).Error
}
