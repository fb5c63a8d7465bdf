package services

import (
	"path/filepath"
	"testing"
	"time"

	"project-ascend/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ascend.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newConcurrentTestDB opens a WAL database with several pooled connections so
// transactions from different goroutines really overlap.
func newConcurrentTestDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "ascend.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// yieldAfterQuery sleeps after every read of table, widening the window between
// a read and the write that depends on it.
func yieldAfterQuery(t *testing.T, db *gorm.DB, table string, d time.Duration) {
	t.Helper()
	err := db.Callback().Query().After("gorm:query").Register("test:yield_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			time.Sleep(d)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func seedUser(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()
	user := models.User{
		ID:             uuid.NewString(),
		Email:          username + "@example.com",
		Username:       username,
		HashedPassword: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
