package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/catalog"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/validation"
)

func parseIntQuery(c *gin.Context, key string, def int) int {
	if s := c.Query(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}

// parseIDParam reads a UUID path parameter, answering 400 when it is malformed.
func parseIDParam(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_"+resource+"_ID",
			"invalid "+resourceName(resource)+" id",
		)
		return uuid.Nil, false
	}
	return id, true
}

// bindValues reads the request body as form values, answering 400 when the
// body cannot be parsed.
func bindValues(c *gin.Context) (validation.Values, bool) {
	values, err := validation.ValuesFromRequest(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, validation.ErrorResponse{
			Code:    "INVALID_BODY",
			Message: "invalid request body",
			Errors: []validation.FieldError{
				{
					Field:   "",
					Rule:    "syntax",
					Message: err.Error(),
				},
			},
		})
		return nil, false
	}
	return values, true
}

func toPagination[T any](p catalog.Page[T]) Pagination {
	return Pagination{
		Page:        p.Number,
		PageSize:    p.PageSize,
		Total:       p.Total,
		TotalPages:  p.NumPages,
		IsPaginated: p.IsPaginated,
	}
}

func toAuthorSummary(a *model.Author) *AuthorSummary {
	if a == nil {
		return nil
	}
	return &AuthorSummary{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Name:      a.String(),
	}
}

func toAuthor(a model.Author) Author {
	out := Author{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DateOfBirth: model.DateRef(a.DateOfBirth),
		DateOfDeath: model.DateRef(a.DateOfDeath),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	for _, b := range a.Books {
		out.Books = append(out.Books, BookSummary{ID: b.ID, Title: b.Title})
	}
	return out
}

func toGenre(g model.Genre) Genre {
	return Genre{ID: g.ID, Name: g.Name}
}

func toLanguage(l model.Language) Language {
	return Language{ID: l.ID, Name: l.Name}
}

func toBook(b model.Book, today time.Time) Book {
	out := Book{
		ID:           b.ID,
		Title:        b.Title,
		Author:       toAuthorSummary(b.Author),
		Summary:      b.Summary,
		ISBN:         b.ISBN,
		Genres:       make([]Genre, 0, len(b.Genres)),
		DisplayGenre: b.DisplayGenre(),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.Language != nil {
		l := toLanguage(*b.Language)
		out.Language = &l
	}
	for _, g := range b.Genres {
		out.Genres = append(out.Genres, toGenre(g))
	}
	for _, inst := range b.Instances {
		out.Copies = append(out.Copies, toBookInstance(inst, today))
	}
	return out
}

func toBookInstance(inst model.BookInstance, today time.Time) BookInstance {
	out := BookInstance{
		ID:         inst.ID,
		Imprint:    inst.Imprint,
		Status:     string(inst.Status),
		StatusName: inst.Status.String(),
		DueBack:    model.DateRef(inst.DueBack),
		IsOverdue:  inst.IsOverdue(today),
		Version:    inst.Version,
	}
	if inst.Book != nil {
		out.Book = &BookSummary{ID: inst.Book.ID, Title: inst.Book.Title}
	}
	if inst.Borrower != nil {
		out.Borrower = &UserSummary{ID: inst.Borrower.ID, Username: inst.Borrower.Username}
	}
	return out
}

func toBookInstances(items []model.BookInstance, today time.Time) []BookInstance {
	out := make([]BookInstance, 0, len(items))
	for _, inst := range items {
		out = append(out, toBookInstance(inst, today))
	}
	return out
}
