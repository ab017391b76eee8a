package catalog

import (
	"fmt"

	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/repository"
)

// PageSize is the number of rows on every listing page.
const PageSize = 10

type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"number"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	NumPages    int   `json:"num_pages"`
	IsPaginated bool  `json:"is_paginated"`
}

// window turns a requested page number into repository bounds. Numbers below
// one mean the first page.
func window(number int) repository.Window {
	if number < 1 {
		number = 1
	}
	return repository.Window{Page: number, PageSize: PageSize}
}

// NewPage wraps one page of results. A page past the last one is not found;
// the first page of an empty listing is.
func NewPage[T any](items []T, w repository.Window, total int64) (Page[T], error) {
	numPages := int((total + int64(w.PageSize) - 1) / int64(w.PageSize))
	if numPages < 1 {
		numPages = 1
	}
	if w.Page > numPages {
		return Page[T]{}, fmt.Errorf("%w: page %d of %d", apperr.ErrNotFound, w.Page, numPages)
	}
	if items == nil {
		items = []T{}
	}

	return Page[T]{
		Items:       items,
		Number:      w.Page,
		PageSize:    w.PageSize,
		Total:       total,
		NumPages:    numPages,
		IsPaginated: total > int64(w.PageSize),
	}, nil
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}
