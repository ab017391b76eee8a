package repository

import (
	"context"
	"testing"

	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/testutil"
)

func TestGormCountRepository_Counts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCountRepository(db)

	author := testutil.SeedAuthor(t, db, "Iain", "Banks")
	testutil.SeedGenre(t, db, "Science Fiction")
	book := testutil.SeedBook(t, db, &author, "Excession")
	testutil.SeedBook(t, db, &author, "")
	reader := testutil.SeedUser(t, db, "reader")

	testutil.SeedInstance(t, db, &book, model.StatusAvailable, nil, nil)
	testutil.SeedInstance(t, db, &book, model.StatusAvailable, nil, nil)
	testutil.SeedInstance(t, db, &book, model.StatusReserved, &reader, nil)

	got, err := repo.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}

	want := CatalogCounts{
		Books:              2,
		Instances:          3,
		AvailableInstances: 2,
		Authors:            1,
		Genres:             1,
		TitledBooks:        1,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestGormCountRepository_Counts_DBError(t *testing.T) {
	db := testutil.NewErrorDB(t)
	repo := NewCountRepository(db)

	if _, err := repo.Counts(context.Background()); err == nil {
		t.Fatal("expected error from database without tables")
	}
}
