package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"accounts-service/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestNewDatabase_MigratesUsers(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	assert.True(t, db.DB.Migrator().HasTable(&entities.User{}))
}

func TestDatabase_TranslatesDuplicateKeys(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	hash := "not-a-real-hash"
	first := &entities.User{Username: "alice", Email: "alice@example.com", PasswordHash: &hash}
	require.NoError(t, db.DB.Create(first).Error)

	dup := &entities.User{Username: "alice2", Email: "alice@example.com", PasswordHash: &hash}
	err := db.DB.Create(dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestDatabase_SQLDB(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}

func TestDatabase_Close(t *testing.T) {
	dbPath := "./test_close.db"
	defer os.Remove(dbPath)

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}
