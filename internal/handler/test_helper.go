package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/catalog"
	"github.com/snnyvrz/locallibrary/internal/circulation"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/repository"
	"github.com/snnyvrz/locallibrary/internal/stats"
	"github.com/snnyvrz/locallibrary/internal/validation"
	"gorm.io/gorm"
)

// testNow is the wall clock seen by every handler test; today is 2030-03-10.
var testNow = time.Date(2030, time.March, 10, 15, 30, 0, 0, time.UTC)

func testDate(days int) string {
	return model.DateOf(testNow).AddDate(0, 0, days).Format(model.DateLayout)
}

func newRepositories(db *gorm.DB) catalog.Repositories {
	return catalog.Repositories{
		Books:     repository.NewGormBookRepository(db),
		Authors:   repository.NewAuthorRepository(db),
		Genres:    repository.NewGenreRepository(db),
		Languages: repository.NewLanguageRepository(db),
		Instances: repository.NewInstanceRepository(db),
		Users:     repository.NewUserRepository(db),
	}
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	return setupTestRouterWithRepos(db, newRepositories(db), circulation.DefaultPolicy())
}

func setupTestRouterWithPolicy(db *gorm.DB, policy circulation.Policy) *gin.Engine {
	return setupTestRouterWithRepos(db, newRepositories(db), policy)
}

// setupTestRouterWithRepos wires every handler over repos. Identity is always
// recorded in db so fake repositories only see the calls under test.
func setupTestRouterWithRepos(db *gorm.DB, repos catalog.Repositories, policy circulation.Policy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(auth.Identity(repository.NewUserRepository(db), auth.AnyPeer))

	circ := circulation.NewService(repos.Instances, repos.Books, repos.Users, policy,
		circulation.WithClock(func() time.Time { return testNow }),
		circulation.WithLocation(time.UTC),
		circulation.WithRetryOptions(circulation.WithBaseDelay(time.Millisecond)),
	)
	cat := catalog.NewService(repos, circ, zerolog.Nop())
	st := stats.NewService(repository.NewCountRepository(db), nil, 0, zerolog.Nop())

	api := r.Group("")
	NewBookHandler(cat, circ.Today).RegisterRoutes(api)
	NewAuthorHandler(cat).RegisterRoutes(api)
	NewTaxonomyHandler(cat).RegisterRoutes(api)
	NewCopyHandler(circ, cat).RegisterRoutes(api)
	NewLoanHandler(cat, circ).RegisterRoutes(api)
	NewUserHandler(cat).RegisterRoutes(api)
	NewStatsHandler(st).RegisterRoutes(api)

	return r
}

type caller struct {
	user  model.User
	perms []string
}

func as(user model.User, perms ...string) *caller {
	return &caller{user: user, perms: perms}
}

func editor(user model.User) *caller {
	return as(user, auth.PermEdit)
}

func librarian(user model.User) *caller {
	return as(user, auth.PermMarkReturned, auth.PermEdit)
}

// doJSON sends body as JSON, or no body when it is nil, on behalf of who.
// A nil who is an anonymous request.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, who *caller) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(router, req, who)
}

// doForm sends values URL-encoded, the way an HTML form would.
func doForm(t *testing.T, router *gin.Engine, method, path string, values map[string][]string, who *caller) *httptest.ResponseRecorder {
	t.Helper()

	req, _ := http.NewRequest(method, path, strings.NewReader(url.Values(values).Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return serve(router, req, who)
}

func serve(router *gin.Engine, req *http.Request, who *caller) *httptest.ResponseRecorder {
	if who != nil {
		req.Header.Set(auth.HeaderUserID, who.user.ID.String())
		req.Header.Set(auth.HeaderUserName, who.user.Username)
		req.Header.Set(auth.HeaderPermissions, strings.Join(who.perms, ","))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal response: %v, body=%s", err, w.Body.String())
	}
	return out
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) validation.ErrorResponse {
	t.Helper()

	if w.Code != status {
		t.Fatalf("expected status %d, got %d, body=%s", status, w.Code, w.Body.String())
	}
	resp := decodeBody[validation.ErrorResponse](t, w)
	if resp.Code != code {
		t.Errorf("expected code %s, got %s", code, resp.Code)
	}
	return resp
}

func hasFieldError(resp validation.ErrorResponse, field, rule string) bool {
	for _, fe := range resp.Errors {
		if fe.Field == field && fe.Rule == rule {
			return true
		}
	}
	return false
}
