// Package testutil provides an in-memory catalog database and seed helpers
// for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:testdb_" + uuid.New().String() + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}
	// one connection serializes writers the way row locks would
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// NewErrorDB returns a connected database without any tables.
func NewErrorDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:errdb_" + uuid.New().String() + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to error test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func SeedUser(t *testing.T, db *gorm.DB, username string) model.User {
	t.Helper()

	user := model.User{ID: uuid.New(), Username: username}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %q: %v", username, err)
	}
	return user
}

func SeedAuthor(t *testing.T, db *gorm.DB, firstName, lastName string) model.Author {
	t.Helper()

	author := model.Author{
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("failed to seed author %q %q: %v", firstName, lastName, err)
	}
	return author
}

func SeedGenre(t *testing.T, db *gorm.DB, name string) model.Genre {
	t.Helper()

	genre := model.Genre{Name: name}
	if err := db.Create(&genre).Error; err != nil {
		t.Fatalf("failed to seed genre %q: %v", name, err)
	}
	return genre
}

func SeedLanguage(t *testing.T, db *gorm.DB, name string) model.Language {
	t.Helper()

	lang := model.Language{Name: name}
	if err := db.Create(&lang).Error; err != nil {
		t.Fatalf("failed to seed language %q: %v", name, err)
	}
	return lang
}

func SeedBook(t *testing.T, db *gorm.DB, author *model.Author, title string) model.Book {
	t.Helper()

	book := model.Book{
		Title:   title,
		Summary: "My book summary",
		ISBN:    "ABCDEFG",
	}
	if author != nil {
		book.AuthorID = &author.ID
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("failed to seed book %q: %v", title, err)
	}
	return book
}

// SeedInstance stores a copy as-is; callers are responsible for a consistent
// status, borrower and due date.
func SeedInstance(t *testing.T, db *gorm.DB, book *model.Book, status model.LoanStatus, borrower *model.User, dueBack *time.Time) model.BookInstance {
	t.Helper()

	inst := model.BookInstance{
		Imprint: "Unlikely Imprint, 2016",
		Status:  status,
		DueBack: dueBack,
	}
	if book != nil {
		inst.BookID = &book.ID
	}
	if borrower != nil {
		inst.BorrowerID = &borrower.ID
	}
	if err := db.Create(&inst).Error; err != nil {
		t.Fatalf("failed to seed book instance: %v", err)
	}
	return inst
}
