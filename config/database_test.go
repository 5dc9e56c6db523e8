package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSetDBAndGetDB(t *testing.T) {
	original := GetDB()
	defer SetDB(original)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	SetDB(db)
	assert.Same(t, db, GetDB())

	sqlDB, err := GetDB().DB()
	assert.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}
