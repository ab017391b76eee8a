package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/model"
)

// Values is a loosely typed field map as submitted by a form or a JSON object.
// Multi-select fields carry several values under one key.
type Values map[string][]string

func (v Values) Get(key string) string {
	if vs := v[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func (v Values) All(key string) []string {
	out := make([]string, 0, len(v[key]))
	for _, s := range v[key] {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// ValuesFromRequest collects the request body into Values. JSON objects are
// flattened: scalars become one value, arrays become many, null is dropped.
// A request without a body yields empty Values.
func ValuesFromRequest(c *gin.Context) (Values, error) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return Values{}, nil
	}

	if c.ContentType() == gin.MIMEJSON {
		var raw map[string]any
		if c.Request.ContentLength == 0 {
			return Values{}, nil
		}
		if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		return valuesFromMap(raw), nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return Values(c.Request.PostForm), nil
}

func valuesFromMap(raw map[string]any) Values {
	out := make(Values, len(raw))
	for k, v := range raw {
		switch tv := v.(type) {
		case nil:
		case []any:
			for _, item := range tv {
				if s, ok := scalarString(item); ok {
					out[k] = append(out[k], s)
				}
			}
		default:
			if s, ok := scalarString(tv); ok {
				out[k] = []string{s}
			}
		}
	}
	return out
}

func scalarString(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(tv), true
	}
	return "", false
}

// Error is returned by form decoding when one or more fields are rejected.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == apperr.ErrValidation
}

// FieldFailure builds an Error for a single field.
func FieldFailure(field, rule, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}

// FieldErrorsOf extracts the field list from err, if it carries one.
func FieldErrorsOf(err error) []FieldError {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Decoder coerces Values into typed form fields, collecting every failure
// instead of stopping at the first one.
type Decoder struct {
	values Values
	errs   []FieldError
}

func NewDecoder(values Values) *Decoder {
	if values == nil {
		values = Values{}
	}
	return &Decoder{values: values}
}

func (d *Decoder) String(key string) string {
	return d.values.Get(key)
}

func (d *Decoder) Has(key string) bool {
	return d.values.Has(key)
}

// Date returns nil for an absent or blank field.
func (d *Decoder) Date(key string) *time.Time {
	s := d.values.Get(key)
	if s == "" {
		return nil
	}
	t, err := model.ParseDate(s)
	if err != nil {
		d.Fail(key, "date", key+" must be a valid date")
		return nil
	}
	return &t
}

// UUID returns nil for an absent or blank field.
func (d *Decoder) UUID(key string) *uuid.UUID {
	s := d.values.Get(key)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		d.Fail(key, "uuid", key+" must be a valid UUID")
		return nil
	}
	return &id
}

func (d *Decoder) UUIDs(key string) []uuid.UUID {
	raw := d.values.All(key)
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		// "1,2,3" is accepted as well as repeated keys
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				d.Fail(key, "uuid", key+" must contain valid UUIDs")
				return nil
			}
			ids = append(ids, id)
		}
	}
	return ids
}

func (d *Decoder) Fail(field, rule, message string) {
	d.errs = append(d.errs, FieldError{Field: field, Rule: rule, Message: message})
}

// Finish validates form with its `validate` tags and returns every collected
// failure as an *Error, or nil.
func (d *Decoder) Finish(form any) error {
	if form != nil {
		if err := validate.Struct(form); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return err
			}
			failed := make(map[string]bool, len(d.errs))
			for _, fe := range d.errs {
				failed[fe.Field] = true
			}
			for _, fe := range toFieldErrors(verrs) {
				if !failed[fe.Field] {
					d.errs = append(d.errs, fe)
				}
			}
		}
	}

	if len(d.errs) == 0 {
		return nil
	}
	return &Error{Fields: d.errs}
}
