package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/testutil"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestGormInstanceRepository_SaveState_OptimisticLock(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewInstanceRepository(db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "reader")
	book := testutil.SeedBook(t, db, nil, "Locked")
	inst := testutil.SeedInstance(t, db, &book, model.StatusAvailable, nil, nil)

	next := inst
	next.Status = model.StatusOnLoan
	next.BorrowerID = &user.ID
	next.DueBack = model.DatePtr(mustDate(t, "2030-01-10"))

	if err := repo.SaveState(ctx, &next, inst.Version); err != nil {
		t.Fatalf("SaveState returned error: %v", err)
	}
	if next.Version != inst.Version+1 {
		t.Errorf("expected version %d, got %d", inst.Version+1, next.Version)
	}

	stale := inst
	stale.Status = model.StatusMaintenance
	err := repo.SaveState(ctx, &stale, inst.Version)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale version, got %v", err)
	}

	stored, err := repo.FindByID(ctx, inst.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.Status != model.StatusOnLoan || !stored.IsBorrowedBy(user.ID) {
		t.Errorf("expected the first write to win, got %+v", stored)
	}
	if stored.Borrower == nil || stored.Borrower.Username != "reader" {
		t.Errorf("expected borrower to be preloaded")
	}

	missing := model.BookInstance{ID: uuid.New(), Status: model.StatusAvailable}
	if err := repo.SaveState(ctx, &missing, 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestGormInstanceRepository_SaveState_ClearsNullableColumns(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewInstanceRepository(db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "reader")
	inst := testutil.SeedInstance(t, db, nil, model.StatusOnLoan, &user, model.DatePtr(mustDate(t, "2030-01-10")))

	inst.Status = model.StatusAvailable
	inst.BorrowerID = nil
	inst.DueBack = nil
	if err := repo.SaveState(ctx, &inst, inst.Version); err != nil {
		t.Fatalf("SaveState returned error: %v", err)
	}

	var stored model.BookInstance
	if err := db.First(&stored, "id = ?", inst.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.BorrowerID != nil || stored.DueBack != nil || stored.Status != model.StatusAvailable {
		t.Errorf("expected cleared loan, got %+v", stored)
	}
}

func TestGormInstanceRepository_List_BorrowerAndStatusFilter(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewInstanceRepository(db)

	user1 := testutil.SeedUser(t, db, "testuser1")
	user2 := testutil.SeedUser(t, db, "testuser2")
	book := testutil.SeedBook(t, db, nil, "Book Title")

	base := mustDate(t, "2030-01-01")
	for i := 0; i < 30; i++ {
		borrower := &user2
		if i%2 == 1 {
			borrower = &user1
		}
		testutil.SeedInstance(t, db, &book, model.StatusOnLoan, borrower, model.DatePtr(base.AddDate(0, 0, i%5)))
	}
	testutil.SeedInstance(t, db, &book, model.StatusMaintenance, &user1, nil)

	result, err := repo.List(context.Background(), InstanceListParams{
		Window:     Window{Page: 1, PageSize: 10},
		BorrowerID: &user1.ID,
		Statuses:   []model.LoanStatus{model.StatusOnLoan, model.StatusReserved},
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if result.Total != 15 {
		t.Fatalf("expected 15 loans for user1, got %d", result.Total)
	}
	if len(result.Instances) != 10 {
		t.Fatalf("expected 10 on first page, got %d", len(result.Instances))
	}
	for i := 1; i < len(result.Instances); i++ {
		if result.Instances[i].DueBack.Before(*result.Instances[i-1].DueBack) {
			t.Fatalf("expected due_back ascending at index %d", i)
		}
	}
}

func TestGormInstanceRepository_List_StaffOrderByTitle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewInstanceRepository(db)

	user := testutil.SeedUser(t, db, "reader")
	zebra := testutil.SeedBook(t, db, nil, "Zebra")
	apple := testutil.SeedBook(t, db, nil, "Apple")
	due := model.DatePtr(mustDate(t, "2030-01-01"))

	testutil.SeedInstance(t, db, &zebra, model.StatusOnLoan, &user, due)
	testutil.SeedInstance(t, db, &apple, model.StatusReserved, &user, nil)
	testutil.SeedInstance(t, db, &apple, model.StatusAvailable, nil, nil)
	testutil.SeedInstance(t, db, nil, model.StatusOnLoan, &user, due)

	result, err := repo.List(context.Background(), InstanceListParams{
		Window:          Window{Page: 1, PageSize: 10},
		RequireBook:     true,
		RequireBorrower: true,
		Sort:            SortBookTitle,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if result.Total != 2 {
		t.Fatalf("expected 2 active loans with a book, got %d", result.Total)
	}
	if result.Instances[0].Book.Title != "Apple" || result.Instances[1].Book.Title != "Zebra" {
		t.Errorf("expected order by title, got %q then %q", result.Instances[0].Book.Title, result.Instances[1].Book.Title)
	}
}
