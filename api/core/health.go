package core

import (
	"context"

	"github.com/corvell/imagetier/cache"
	"github.com/corvell/imagetier/storage"
	"gorm.io/gorm"
)

func checkDatabaseHealth(db *gorm.DB) string {
	if db == nil {
		return "not initialized"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(provider cache.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	return "ok"
}

func checkStorageHealth(factory *storage.Factory) string {
	if factory == nil {
		return "not initialized"
	}

	provider := factory.GetDefault()
	if provider == nil {
		return "error: no default storage provider"
	}

	if err := provider.Health(context.Background()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
