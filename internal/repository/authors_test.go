package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/testutil"
)

func TestGormAuthorRepository_List_TokensMustAllMatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAuthorRepository(db)

	testutil.SeedAuthor(t, db, "John", "Smith")
	testutil.SeedAuthor(t, db, "John", "Doe")
	testutil.SeedAuthor(t, db, "Jane", "Smith")
	testutil.SeedAuthor(t, db, "Johnny", "Smithers")

	result, err := repo.List(context.Background(), AuthorListParams{
		Window: Window{Page: 1, PageSize: 10},
		Query:  "john  SMITH",
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if result.Total != 2 {
		t.Fatalf("expected total=2, got %d", result.Total)
	}
	if result.Authors[0].LastName != "Smith" || result.Authors[1].LastName != "Smithers" {
		t.Errorf("unexpected authors: %+v", result.Authors)
	}
}

func TestGormAuthorRepository_List_Pagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAuthorRepository(db)

	for i := 0; i < 13; i++ {
		testutil.SeedAuthor(t, db, fmt.Sprintf("Christian %d", i), fmt.Sprintf("Surname %02d", i))
	}

	page1, err := repo.List(context.Background(), AuthorListParams{Window: Window{Page: 1, PageSize: 10}})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	page2, err := repo.List(context.Background(), AuthorListParams{Window: Window{Page: 2, PageSize: 10}})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(page1.Authors) != 10 || len(page2.Authors) != 3 {
		t.Fatalf("expected 10 and 3 authors, got %d and %d", len(page1.Authors), len(page2.Authors))
	}
	if page1.Total != 13 || page2.Total != 13 {
		t.Errorf("expected total 13 on both pages")
	}
	if page1.Authors[0].LastName != "Surname 00" || page2.Authors[2].LastName != "Surname 12" {
		t.Errorf("expected last name ordering")
	}
}

func TestGormAuthorRepository_Delete_ClearsBookAuthor(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAuthorRepository(db)

	author := testutil.SeedAuthor(t, db, "Leo", "Tolstoy")
	book := testutil.SeedBook(t, db, &author, "War and Peace")

	if err := repo.Delete(context.Background(), author.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	var stored model.Book
	if err := db.First(&stored, "id = ?", book.ID).Error; err != nil {
		t.Fatalf("expected book to survive, got %v", err)
	}
	if stored.AuthorID != nil {
		t.Errorf("expected author reference to be cleared")
	}
}
