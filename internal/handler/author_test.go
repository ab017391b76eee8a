package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/circulation"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/repository"
	"github.com/snnyvrz/locallibrary/internal/testutil"
	"gorm.io/gorm"
)

type fakeAuthorRepo struct {
	CreateFn   func(ctx context.Context, a *model.Author) error
	ListFn     func(ctx context.Context, params repository.AuthorListParams) (repository.AuthorListResult, error)
	FindByIDFn func(ctx context.Context, id uuid.UUID) (*model.Author, error)
	UpdateFn   func(ctx context.Context, a *model.Author) error
	DeleteFn   func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeAuthorRepo) Create(ctx context.Context, a *model.Author) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, a)
	}
	return nil
}

func (f *fakeAuthorRepo) List(ctx context.Context, params repository.AuthorListParams) (repository.AuthorListResult, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, params)
	}
	return repository.AuthorListResult{}, nil
}

func (f *fakeAuthorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeAuthorRepo) Update(ctx context.Context, a *model.Author) error {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, a)
	}
	return nil
}

func (f *fakeAuthorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}

func setupAuthorRouterWithRepo(t *testing.T, db *gorm.DB, authorRepo repository.AuthorRepository) *gin.Engine {
	t.Helper()

	repos := newRepositories(db)
	repos.Authors = authorRepo
	return setupTestRouterWithRepos(db, repos, circulation.DefaultPolicy())
}

func TestCreateAuthor_Success(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	staff := testutil.SeedUser(t, db, "editor")

	w := doJSON(t, router, http.MethodPost, "/authors", map[string]any{
		"first_name":    "Ursula",
		"last_name":     "Le Guin",
		"date_of_birth": "1929-10-21",
		"date_of_death": "2018-01-22",
	}, editor(staff))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeBody[AuthorResponse](t, w)
	if resp.Data.ID == uuid.Nil {
		t.Errorf("expected non-empty ID")
	}
	if resp.Data.LastName != "Le Guin" {
		t.Errorf("expected last name %q, got %q", "Le Guin", resp.Data.LastName)
	}
	if resp.Data.DateOfBirth == nil || resp.Data.DateOfBirth.Format(model.DateLayout) != "1929-10-21" {
		t.Errorf("expected date_of_birth 1929-10-21, got %v", resp.Data.DateOfBirth)
	}

	var stored model.Author
	if err := db.First(&stored, "id = ?", resp.Data.ID).Error; err != nil {
		t.Fatalf("expected author in db, got error: %v", err)
	}
}

func TestCreateAuthor_ValidationError(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	staff := testutil.SeedUser(t, db, "editor")

	tests := []struct {
		name  string
		body  map[string]any
		field string
		rule  string
	}{
		{
			name:  "missing first name",
			body:  map[string]any{"last_name": "Le Guin"},
			field: "first_name",
			rule:  "required",
		},
		{
			name:  "bad date",
			body:  map[string]any{"first_name": "U", "last_name": "L", "date_of_birth": "someday"},
			field: "date_of_birth",
			rule:  "date",
		},
		{
			name:  "death before birth",
			body:  map[string]any{"first_name": "U", "last_name": "L", "date_of_birth": "1929-10-21", "date_of_death": "1900-01-01"},
			field: "date_of_death",
			rule:  "after_birth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/authors", tt.body, editor(staff))
			resp := expectError(t, w, http.StatusBadRequest, "VALIDATION_FAILED")

			if !hasFieldError(resp, tt.field, tt.rule) {
				t.Errorf("expected %s/%s error, got %+v", tt.field, tt.rule, resp.Errors)
			}
		})
	}
}

func TestCreateAuthor_Forbidden(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	reader := testutil.SeedUser(t, db, "reader")

	w := doJSON(t, router, http.MethodPost, "/authors", map[string]any{
		"first_name": "U",
		"last_name":  "L",
	}, as(reader, auth.PermMarkReturned))
	expectError(t, w, http.StatusForbidden, "FORBIDDEN")
}

func TestCreateAuthor_InternalError_Returns500(t *testing.T) {
	db := testutil.NewTestDB(t)

	fakeRepo := &fakeAuthorRepo{
		CreateFn: func(ctx context.Context, a *model.Author) error {
			return errors.New("db down")
		},
	}
	router := setupAuthorRouterWithRepo(t, db, fakeRepo)

	staff := testutil.SeedUser(t, db, "editor")

	w := doJSON(t, router, http.MethodPost, "/authors", map[string]any{
		"first_name": "U",
		"last_name":  "L",
	}, editor(staff))
	expectError(t, w, http.StatusInternalServerError, "AUTHOR_CREATE_FAILED")
}

func TestListAuthors_Pagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	for i := 0; i < 13; i++ {
		testutil.SeedAuthor(t, db, "Christian", fmt.Sprintf("Surname %02d", i))
	}

	w := doJSON(t, router, http.MethodGet, "/authors?page=2", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeBody[ListAuthorsResponse](t, w)
	if len(resp.Data) != 3 {
		t.Errorf("expected 3 authors on page 2, got %d", len(resp.Data))
	}
	if resp.Pagination.Page != 2 || !resp.Pagination.IsPaginated || resp.Pagination.Total != 13 {
		t.Errorf("unexpected pagination %+v", resp.Pagination)
	}
}

func TestListAuthors_PageOutOfRange(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	testutil.SeedAuthor(t, db, "Iain", "Banks")

	w := doJSON(t, router, http.MethodGet, "/authors?page=2", nil, nil)
	expectError(t, w, http.StatusNotFound, "PAGE_NOT_FOUND")
}

func TestListAuthors_SearchMatchesEveryWord(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	testutil.SeedAuthor(t, db, "John", "Smith")
	testutil.SeedAuthor(t, db, "John", "Doe")
	testutil.SeedAuthor(t, db, "Jane", "Smith")

	w := doJSON(t, router, http.MethodGet, "/authors?q=john+smith", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeBody[ListAuthorsResponse](t, w)
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 author, got %d", len(resp.Data))
	}
	if resp.Data[0].FirstName != "John" || resp.Data[0].LastName != "Smith" {
		t.Errorf("expected John Smith, got %+v", resp.Data[0])
	}
}

func TestListAuthors_InternalError_Returns500(t *testing.T) {
	db := testutil.NewTestDB(t)

	fakeRepo := &fakeAuthorRepo{
		ListFn: func(ctx context.Context, params repository.AuthorListParams) (repository.AuthorListResult, error) {
			return repository.AuthorListResult{}, errors.New("db down")
		},
	}
	router := setupAuthorRouterWithRepo(t, db, fakeRepo)

	w := doJSON(t, router, http.MethodGet, "/authors", nil, nil)
	expectError(t, w, http.StatusInternalServerError, "AUTHOR_LIST_FAILED")
}

func TestGetAuthorByID_WithBooks(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	author := testutil.SeedAuthor(t, db, "Ursula", "Le Guin")
	testutil.SeedBook(t, db, &author, "The Word for World Is Forest")
	testutil.SeedBook(t, db, &author, "Always Coming Home")

	w := doJSON(t, router, http.MethodGet, "/authors/"+author.ID.String(), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeBody[AuthorResponse](t, w)
	if len(resp.Data.Books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(resp.Data.Books))
	}
	if resp.Data.Books[0].Title != "Always Coming Home" {
		t.Errorf("expected books ordered by title, got %q first", resp.Data.Books[0].Title)
	}
}

func TestGetAuthorByID_InvalidUUID(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	w := doJSON(t, router, http.MethodGet, "/authors/not-a-uuid", nil, nil)
	expectError(t, w, http.StatusBadRequest, "INVALID_AUTHOR_ID")
}

func TestGetAuthorByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	w := doJSON(t, router, http.MethodGet, "/authors/"+uuid.NewString(), nil, nil)
	expectError(t, w, http.StatusNotFound, "AUTHOR_NOT_FOUND")
}

func TestGetAuthorByID_InternalError_Returns500(t *testing.T) {
	db := testutil.NewTestDB(t)

	fakeRepo := &fakeAuthorRepo{
		FindByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Author, error) {
			return nil, errors.New("db down")
		},
	}
	router := setupAuthorRouterWithRepo(t, db, fakeRepo)

	w := doJSON(t, router, http.MethodGet, "/authors/"+uuid.NewString(), nil, nil)
	expectError(t, w, http.StatusInternalServerError, "AUTHOR_FETCH_FAILED")
}

func TestUpdateAuthor_Success(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	staff := testutil.SeedUser(t, db, "editor")
	author := testutil.SeedAuthor(t, db, "Ursula", "LeGuin")

	w := doForm(t, router, http.MethodPut, "/authors/"+author.ID.String(), map[string][]string{
		"first_name":    {"Ursula"},
		"last_name":     {"Le Guin"},
		"date_of_birth": {"1929-10-21"},
	}, editor(staff))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeBody[AuthorResponse](t, w)
	if resp.Data.LastName != "Le Guin" {
		t.Errorf("expected last name %q, got %q", "Le Guin", resp.Data.LastName)
	}
	if resp.Data.DateOfBirth == nil {
		t.Errorf("expected date_of_birth to be set")
	}
}

func TestUpdateAuthor_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	staff := testutil.SeedUser(t, db, "editor")

	w := doJSON(t, router, http.MethodPut, "/authors/"+uuid.NewString(), map[string]any{
		"first_name": "U",
		"last_name":  "L",
	}, editor(staff))
	expectError(t, w, http.StatusNotFound, "AUTHOR_NOT_FOUND")
}

func TestUpdateAuthor_InternalErrorOnSave_Returns500(t *testing.T) {
	db := testutil.NewTestDB(t)

	fakeRepo := &fakeAuthorRepo{
		UpdateFn: func(ctx context.Context, a *model.Author) error {
			return errors.New("db down")
		},
	}
	router := setupAuthorRouterWithRepo(t, db, fakeRepo)

	staff := testutil.SeedUser(t, db, "editor")

	w := doJSON(t, router, http.MethodPut, "/authors/"+uuid.NewString(), map[string]any{
		"first_name": "U",
		"last_name":  "L",
	}, editor(staff))
	expectError(t, w, http.StatusInternalServerError, "AUTHOR_UPDATE_FAILED")
}

func TestDeleteAuthor_Success(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	staff := testutil.SeedUser(t, db, "editor")
	author := testutil.SeedAuthor(t, db, "Doomed", "Author")
	book := testutil.SeedBook(t, db, &author, "Orphan")

	w := doJSON(t, router, http.MethodDelete, "/authors/"+author.ID.String(), nil, editor(staff))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d, body=%s", w.Code, w.Body.String())
	}

	var stored model.Book
	if err := db.First(&stored, "id = ?", book.ID).Error; err != nil {
		t.Fatalf("expected book to survive, got error: %v", err)
	}
	if stored.AuthorID != nil {
		t.Errorf("expected book to lose its author, got %v", stored.AuthorID)
	}
}

func TestDeleteAuthor_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	staff := testutil.SeedUser(t, db, "editor")

	w := doJSON(t, router, http.MethodDelete, "/authors/"+uuid.NewString(), nil, editor(staff))
	expectError(t, w, http.StatusNotFound, "AUTHOR_NOT_FOUND")
}

func TestDeleteAuthor_InternalError_Returns500(t *testing.T) {
	db := testutil.NewTestDB(t)

	fakeRepo := &fakeAuthorRepo{
		DeleteFn: func(ctx context.Context, id uuid.UUID) error {
			return errors.New("db down")
		},
	}
	router := setupAuthorRouterWithRepo(t, db, fakeRepo)

	staff := testutil.SeedUser(t, db, "editor")

	w := doJSON(t, router, http.MethodDelete, "/authors/"+uuid.NewString(), nil, editor(staff))
	expectError(t, w, http.StatusInternalServerError, "AUTHOR_DELETE_FAILED")
}
