package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"procurely/models"
)

func RunMigrations(db *gorm.DB) error {
	zap.L().Info("running database migrations")

	if err := db.AutoMigrate(models.All()...); err != nil {
		zap.L().Error("migrations failed", zap.Error(err))
		return err
	}

	zap.L().Info("migrations completed")
	return nil
}
