package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/validation"
)

type AuthorForm struct {
	FirstName   string     `form:"first_name" validate:"required,max=100"`
	LastName    string     `form:"last_name" validate:"required,max=100"`
	DateOfBirth *time.Time `form:"date_of_birth"`
	DateOfDeath *time.Time `form:"date_of_death"`
}

func ParseAuthorForm(values validation.Values) (AuthorForm, error) {
	d := validation.NewDecoder(values)
	form := AuthorForm{
		FirstName:   d.String("first_name"),
		LastName:    d.String("last_name"),
		DateOfBirth: d.Date("date_of_birth"),
		DateOfDeath: d.Date("date_of_death"),
	}
	if form.DateOfBirth != nil && form.DateOfDeath != nil && form.DateOfDeath.Before(*form.DateOfBirth) {
		d.Fail("date_of_death", "after_birth", "date_of_death must not be before date_of_birth")
	}
	if err := d.Finish(&form); err != nil {
		return AuthorForm{}, err
	}
	return form, nil
}

type BookForm struct {
	Title      string      `form:"title" validate:"required,max=200"`
	AuthorID   *uuid.UUID  `form:"author_id"`
	LanguageID *uuid.UUID  `form:"language_id"`
	ISBN       string      `form:"isbn" validate:"required,max=13"`
	Summary    string      `form:"summary" validate:"required,max=1000"`
	GenreIDs   []uuid.UUID `form:"genre"`
}

func ParseBookForm(values validation.Values) (BookForm, error) {
	d := validation.NewDecoder(values)
	form := BookForm{
		Title:      d.String("title"),
		AuthorID:   d.UUID("author_id"),
		LanguageID: d.UUID("language_id"),
		ISBN:       d.String("isbn"),
		Summary:    d.String("summary"),
		GenreIDs:   dedupe(d.UUIDs("genre")),
	}
	if err := d.Finish(&form); err != nil {
		return BookForm{}, err
	}
	return form, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type GenreForm struct {
	Name string `form:"name" validate:"required,max=200"`
}

func ParseGenreForm(values validation.Values) (GenreForm, error) {
	d := validation.NewDecoder(values)
	form := GenreForm{Name: d.String("name")}
	if err := d.Finish(&form); err != nil {
		return GenreForm{}, err
	}
	return form, nil
}

type LanguageForm struct {
	Name string `form:"name" validate:"required,max=50"`
}

func ParseLanguageForm(values validation.Values) (LanguageForm, error) {
	d := validation.NewDecoder(values)
	form := LanguageForm{Name: d.String("name")}
	if err := d.Finish(&form); err != nil {
		return LanguageForm{}, err
	}
	return form, nil
}
