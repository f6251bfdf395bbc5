package testutil

import (
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/princeprakhar/reviewflow-backend/internal/database"
	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteInMemoryDSNPattern = "file:reviewflow-test-%s?mode=memory&cache=shared&_pragma=foreign_keys(1)"

type testingLogWriter struct {
	t *testing.T
}

func (writer testingLogWriter) Write(data []byte) (int, error) {
	if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
		writer.t.Log(trimmed)
	}
	return len(data), nil
}

// SQLiteDSN returns a unique in-memory SQLite data source name.
func SQLiteDSN() string {
	return fmt.Sprintf(sqliteInMemoryDSNPattern, uuid.NewString())
}

// NewDatabase opens a migrated in-memory SQLite database that lives for the
// duration of the test.
func NewDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	gormLogger := logger.New(
		log.New(testingLogWriter{t: t}, "", 0),
		logger.Config{
			IgnoreRecordNotFoundError: true,
			LogLevel:                  logger.Error,
		},
	)

	db, err := database.Open(database.DriverSQLite, SQLiteDSN(), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given email and a fixed password.
func CreateUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{Email: email, Password: "password123", Name: "Test Owner"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}
