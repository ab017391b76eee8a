package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/locallibrary/internal/apperr"
)

type sampleForm struct {
	Name string `form:"name" validate:"required,max=5"`
}

func TestDecoder_CollectsDecodeAndRuleFailures(t *testing.T) {
	d := NewDecoder(Values{
		"due_back": {"not-a-date"},
		"author":   {"nope"},
	})

	if got := d.Date("due_back"); got != nil {
		t.Fatalf("expected nil date, got %v", got)
	}
	if got := d.UUID("author"); got != nil {
		t.Fatalf("expected nil uuid, got %v", got)
	}

	err := d.Finish(&sampleForm{Name: ""})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	fields := FieldErrorsOf(err)
	if len(fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %+v", len(fields), fields)
	}

	seen := map[string]string{}
	for _, f := range fields {
		seen[f.Field] = f.Rule
	}
	if seen["due_back"] != "date" || seen["author"] != "uuid" || seen["name"] != "required" {
		t.Errorf("unexpected field errors: %+v", fields)
	}
}

func TestDecoder_ValidForm(t *testing.T) {
	d := NewDecoder(Values{"name": {" Ann "}, "due_back": {"2024-03-01"}})

	form := sampleForm{Name: d.String("name")}
	due := d.Date("due_back")

	if err := d.Finish(&form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form.Name != "Ann" {
		t.Errorf("expected trimmed name, got %q", form.Name)
	}
	if due == nil || due.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("unexpected due date %v", due)
	}
}

func TestDecoder_UUIDsAcceptsRepeatedAndCommaSeparated(t *testing.T) {
	a := "550e8400-e29b-41d4-a716-446655440000"
	b := "550e8400-e29b-41d4-a716-446655440001"
	c := "550e8400-e29b-41d4-a716-446655440002"

	d := NewDecoder(Values{"genre": {a, b + "," + c}})
	ids := d.UUIDs("genre")

	if err := d.Finish(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
}

func TestValuesFromRequest_JSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	body := `{"title":"Dune","genre":["g1","g2"],"pages":412,"summary":null}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	values, err := ValuesFromRequest(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if values.Get("title") != "Dune" {
		t.Errorf("expected title Dune, got %q", values.Get("title"))
	}
	if got := values.All("genre"); len(got) != 2 {
		t.Errorf("expected 2 genres, got %v", got)
	}
	if values.Get("pages") != "412" {
		t.Errorf("expected pages 412, got %q", values.Get("pages"))
	}
	if values.Has("summary") {
		t.Errorf("expected null summary to be dropped")
	}
}

func TestValuesFromRequest_Form(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("imprint=Penguin&genre=a&genre=b"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	values, err := ValuesFromRequest(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values.Get("imprint") != "Penguin" {
		t.Errorf("expected imprint Penguin, got %q", values.Get("imprint"))
	}
	if len(values.All("genre")) != 2 {
		t.Errorf("expected 2 genre values")
	}
}

func TestValuesFromRequest_NoBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, ct := range []string{"", "application/json", "application/x-www-form-urlencoded"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodPost, "/", nil)
		if ct != "" {
			c.Request.Header.Set("Content-Type", ct)
		}

		values, err := ValuesFromRequest(c)
		if err != nil {
			t.Fatalf("content type %q: unexpected error: %v", ct, err)
		}
		if len(values) != 0 {
			t.Errorf("content type %q: expected no values, got %v", ct, values)
		}
	}
}
