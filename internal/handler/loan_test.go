package handler

import (
	"net/http"
	"testing"

	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/testutil"
)

func TestListMyLoans(t *testing.T) {
	f := newCopyFixture(t)
	router := setupTestRouter(f.db)

	late := f.seed(t, model.StatusOnLoan, &f.reader, days(5))
	soon := f.seed(t, model.StatusOnLoan, &f.reader, days(1))
	f.seed(t, model.StatusOnLoan, &f.other, days(2))
	f.seed(t, model.StatusAvailable, nil, nil)

	w := doJSON(t, router, http.MethodGet, "/loans/mine", nil, as(f.reader))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeBody[ListBookInstancesResponse](t, w)
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 loans, got %d", len(resp.Data))
	}
	if resp.Data[0].ID != soon.ID || resp.Data[1].ID != late.ID {
		t.Errorf("expected loans soonest due first, got %s then %s", resp.Data[0].ID, resp.Data[1].ID)
	}
}

func TestListMyLoans_RequiresLogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	w := doJSON(t, router, http.MethodGet, "/loans/mine", nil, nil)
	expectError(t, w, http.StatusUnauthorized, "LOGIN_REQUIRED")
}

func TestListMyLoans_EmptyFirstPage(t *testing.T) {
	f := newCopyFixture(t)
	router := setupTestRouter(f.db)

	w := doJSON(t, router, http.MethodGet, "/loans/mine", nil, as(f.reader))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if resp := decodeBody[ListBookInstancesResponse](t, w); len(resp.Data) != 0 {
		t.Errorf("expected no loans, got %d", len(resp.Data))
	}

	w = doJSON(t, router, http.MethodGet, "/loans/mine?page=2", nil, as(f.reader))
	expectError(t, w, http.StatusNotFound, "PAGE_NOT_FOUND")
}

func TestListAllLoans(t *testing.T) {
	f := newCopyFixture(t)
	router := setupTestRouter(f.db)

	zebra := testutil.SeedBook(t, f.db, nil, "Zebra Stories")
	testutil.SeedInstance(t, f.db, &zebra, model.StatusOnLoan, &f.other, model.DatePtr(testNow))
	f.seed(t, model.StatusOnLoan, &f.reader, days(9))
	f.seed(t, model.StatusAvailable, nil, nil)
	// a copy whose book was deleted is left out
	testutil.SeedInstance(t, f.db, nil, model.StatusOnLoan, &f.reader, model.DatePtr(testNow))

	w := doJSON(t, router, http.MethodGet, "/loans", nil, as(f.staff, auth.PermMarkReturned))
	expectError(t, w, http.StatusForbidden, "FORBIDDEN")

	w = doJSON(t, router, http.MethodGet, "/loans", nil, librarian(f.staff))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeBody[ListBookInstancesResponse](t, w)
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 loans, got %d", len(resp.Data))
	}
	if resp.Data[0].Book.Title != "The Dispossessed" || resp.Data[1].Book.Title != "Zebra Stories" {
		t.Errorf("expected loans ordered by title, got %q then %q", resp.Data[0].Book.Title, resp.Data[1].Book.Title)
	}
	if resp.Data[0].Borrower == nil || resp.Data[0].Borrower.Username != "reader" {
		t.Errorf("expected borrower reader, got %+v", resp.Data[0].Borrower)
	}
}
