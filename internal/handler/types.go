package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/model"
)

// Request bodies. Handlers accept the same fields as JSON or as form data.

type AuthorRequest struct {
	FirstName   string `json:"first_name" example:"Ursula"`
	LastName    string `json:"last_name" example:"Le Guin"`
	DateOfBirth string `json:"date_of_birth,omitempty" example:"1929-10-21"`
	DateOfDeath string `json:"date_of_death,omitempty" example:"2018-01-22"`
}

type BookRequest struct {
	Title      string   `json:"title" example:"The Dispossessed"`
	AuthorID   string   `json:"author_id,omitempty" format:"uuid"`
	LanguageID string   `json:"language_id,omitempty" format:"uuid"`
	ISBN       string   `json:"isbn" example:"9780061054884"`
	Summary    string   `json:"summary"`
	Genre      []string `json:"genre,omitempty"`
}

type NameRequest struct {
	Name string `json:"name" example:"Science Fiction"`
}

type CopyRequest struct {
	Imprint string `json:"imprint" example:"Harper Voyager, 1994"`
	Status  string `json:"status,omitempty" enums:"a,m"`
}

type DueDateRequest struct {
	DueBack string `json:"due_back" example:"2025-11-24"`
}

type LendRequest struct {
	BorrowerID string `json:"borrower_id" format:"uuid"`
	DueBack    string `json:"due_back" example:"2025-11-24"`
}

// Responses.

type Pagination struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	IsPaginated bool  `json:"is_paginated"`
}

type AuthorSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Name      string    `json:"name"`
}

type Author struct {
	ID          uuid.UUID     `json:"id"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	DateOfBirth *model.Date   `json:"date_of_birth,omitempty" swaggertype:"string" example:"1929-10-21"`
	DateOfDeath *model.Date   `json:"date_of_death,omitempty" swaggertype:"string" example:"2018-01-22"`
	Books       []BookSummary `json:"books,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type AuthorResponse struct {
	Data Author `json:"data"`
}

type ListAuthorsResponse struct {
	Data       []Author   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Genre struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type GenreResponse struct {
	Data Genre `json:"data"`
}

type ListGenresResponse struct {
	Data       []Genre    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Language struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type LanguageResponse struct {
	Data Language `json:"data"`
}

type ListLanguagesResponse struct {
	Data       []Language `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type BookSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type Book struct {
	ID           uuid.UUID      `json:"id"`
	Title        string         `json:"title"`
	Author       *AuthorSummary `json:"author,omitempty"`
	Summary      string         `json:"summary"`
	ISBN         string         `json:"isbn"`
	Language     *Language      `json:"language,omitempty"`
	Genres       []Genre        `json:"genres"`
	DisplayGenre string         `json:"display_genre"`
	Copies       []BookInstance `json:"copies,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type BookResponse struct {
	Data Book `json:"data"`
}

type ListBooksResponse struct {
	Data       []Book     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type BookInstance struct {
	ID         uuid.UUID    `json:"id"`
	Book       *BookSummary `json:"book,omitempty"`
	Imprint    string       `json:"imprint"`
	Status     string       `json:"status" enums:"a,m,o,r"`
	StatusName string       `json:"status_name" enums:"available,maintenance,on_loan,reserved"`
	DueBack    *model.Date  `json:"due_back,omitempty" swaggertype:"string" example:"2025-11-24"`
	IsOverdue  bool         `json:"is_overdue"`
	Borrower   *UserSummary `json:"borrower,omitempty"`
	Version    int          `json:"version"`
}

type BookInstanceResponse struct {
	Data BookInstance `json:"data"`
	// ProposedRenewalDate is the default offered when renewing this copy.
	ProposedRenewalDate *model.Date `json:"proposed_renewal_date,omitempty" swaggertype:"string" example:"2025-12-15"`
}

type ListBookInstancesResponse struct {
	Data       []BookInstance `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

type StatsResponse struct {
	Books              int64 `json:"books"`
	Instances          int64 `json:"instances"`
	AvailableInstances int64 `json:"available_instances"`
	Authors            int64 `json:"authors"`
	Genres             int64 `json:"genres"`
	TitledBooks        int64 `json:"titled_books"`
}
