// Package catalog serves the browsing side of the library: paginated
// listings, detail lookups and the staff screens that edit authors, books,
// genres and languages.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/repository"
	"github.com/snnyvrz/locallibrary/internal/validation"
)

type Repositories struct {
	Books     repository.BookRepository
	Authors   repository.AuthorRepository
	Genres    repository.GenreRepository
	Languages repository.LanguageRepository
	Instances repository.InstanceRepository
	Users     repository.UserRepository
}

// BorrowerReleaser settles the loans and holds of a user who is leaving.
type BorrowerReleaser interface {
	ReleaseBorrower(ctx context.Context, userID uuid.UUID) (int, error)
}

type Service struct {
	books     repository.BookRepository
	authors   repository.AuthorRepository
	genres    repository.GenreRepository
	languages repository.LanguageRepository
	instances repository.InstanceRepository
	users     repository.UserRepository
	loans     BorrowerReleaser
	logger    zerolog.Logger
}

func NewService(repos Repositories, loans BorrowerReleaser, logger zerolog.Logger) *Service {
	return &Service{
		books:     repos.Books,
		authors:   repos.Authors,
		genres:    repos.Genres,
		languages: repos.Languages,
		instances: repos.Instances,
		users:     repos.Users,
		loans:     loans,
		logger:    logger,
	}
}

// ListBooks matches term against the title and the author's names.
func (s *Service) ListBooks(ctx context.Context, term string, page int) (Page[model.Book], error) {
	w := window(page)
	res, err := s.books.List(ctx, repository.BookListParams{Window: w, Query: term})
	if err != nil {
		return Page[model.Book]{}, fmt.Errorf("list books: %w", err)
	}
	return NewPage(res.Books, w, res.Total)
}

// ListAuthors requires every whitespace-separated token of term to match the
// first or the last name.
func (s *Service) ListAuthors(ctx context.Context, term string, page int) (Page[model.Author], error) {
	w := window(page)
	res, err := s.authors.List(ctx, repository.AuthorListParams{Window: w, Query: term})
	if err != nil {
		return Page[model.Author]{}, fmt.Errorf("list authors: %w", err)
	}
	return NewPage(res.Authors, w, res.Total)
}

func (s *Service) ListGenres(ctx context.Context, page int) (Page[model.Genre], error) {
	w := window(page)
	genres, total, err := s.genres.List(ctx, w)
	if err != nil {
		return Page[model.Genre]{}, fmt.Errorf("list genres: %w", err)
	}
	return NewPage(genres, w, total)
}

func (s *Service) ListLanguages(ctx context.Context, page int) (Page[model.Language], error) {
	w := window(page)
	langs, total, err := s.languages.List(ctx, w)
	if err != nil {
		return Page[model.Language]{}, fmt.Errorf("list languages: %w", err)
	}
	return NewPage(langs, w, total)
}

type InstanceFilter struct {
	BookID *uuid.UUID
	Status *model.LoanStatus
}

func (s *Service) ListInstances(ctx context.Context, filter InstanceFilter, page int) (Page[model.BookInstance], error) {
	w := window(page)
	params := repository.InstanceListParams{Window: w, BookID: filter.BookID}
	if filter.Status != nil {
		params.Statuses = []model.LoanStatus{*filter.Status}
	}

	res, err := s.instances.List(ctx, params)
	if err != nil {
		return Page[model.BookInstance]{}, fmt.Errorf("list book instances: %w", err)
	}
	return NewPage(res.Instances, w, res.Total)
}

// ListMyLoans lists the copies the actor has on loan or on hold, soonest due
// first.
func (s *Service) ListMyLoans(ctx context.Context, actor auth.Actor, page int) (Page[model.BookInstance], error) {
	if actor.Anonymous() {
		return Page[model.BookInstance]{}, fmt.Errorf("%w: login required", apperr.ErrForbidden)
	}

	w := window(page)
	res, err := s.instances.List(ctx, repository.InstanceListParams{
		Window:     w,
		BorrowerID: &actor.ID,
		Statuses:   []model.LoanStatus{model.StatusOnLoan, model.StatusReserved},
		Sort:       repository.SortDueBack,
	})
	if err != nil {
		return Page[model.BookInstance]{}, fmt.Errorf("list loans of %s: %w", actor.ID, err)
	}
	return NewPage(res.Instances, w, res.Total)
}

// ListActiveStaffLoans lists every borrowed copy of a catalogued book, ordered
// by title.
func (s *Service) ListActiveStaffLoans(ctx context.Context, actor auth.Actor, page int) (Page[model.BookInstance], error) {
	if !actor.HasAll(auth.PermMarkReturned, auth.PermEdit) {
		return Page[model.BookInstance]{}, fmt.Errorf("%w: %s and %s required", apperr.ErrForbidden, auth.PermMarkReturned, auth.PermEdit)
	}

	w := window(page)
	res, err := s.instances.List(ctx, repository.InstanceListParams{
		Window:          w,
		RequireBook:     true,
		RequireBorrower: true,
		Sort:            repository.SortBookTitle,
	})
	if err != nil {
		return Page[model.BookInstance]{}, fmt.Errorf("list active loans: %w", err)
	}
	return NewPage(res.Instances, w, res.Total)
}

func (s *Service) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return book, nil
}

func (s *Service) GetAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	author, err := s.authors.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get author %s: %w", id, err)
	}
	return author, nil
}

func (s *Service) GetInstance(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
	inst, err := s.instances.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book instance %s: %w", id, err)
	}
	return inst, nil
}

func requireEdit(actor auth.Actor) error {
	if !actor.Has(auth.PermEdit) {
		return fmt.Errorf("%w: %s required", apperr.ErrForbidden, auth.PermEdit)
	}
	return nil
}

func (s *Service) CreateAuthor(ctx context.Context, values validation.Values, actor auth.Actor) (*model.Author, error) {
	if err := requireEdit(actor); err != nil {
		return nil, err
	}
	form, err := ParseAuthorForm(values)
	if err != nil {
		return nil, err
	}

	author := &model.Author{
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		DateOfBirth: form.DateOfBirth,
		DateOfDeath: form.DateOfDeath,
	}
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}

	s.logger.Info().Str("author_id", author.ID.String()).Str("by", actor.Username).Msg("author created")
	return author, nil
}

func (s *Service) UpdateAuthor(ctx context.Context, id uuid.UUID, values validation.Values, actor auth.Actor) (*model.Author, error) {
	if err := requireEdit(actor); err != nil {
		return nil, err
	}
	form, err := ParseAuthorForm(values)
	if err != nil {
		return nil, err
	}

	author := &model.Author{
		ID:          id,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		DateOfBirth: form.DateOfBirth,
		DateOfDeath: form.DateOfDeath,
	}
	if err := s.authors.Update(ctx, author); err != nil {
		return nil, fmt.Errorf("update author %s: %w", id, err)
	}
	return s.GetAuthor(ctx, id)
}

// DeleteAuthor removes the author; their books remain without one.
func (s *Service) DeleteAuthor(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	if err := requireEdit(actor); err != nil {
		return err
	}
	if err := s.authors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete author %s: %w", id, err)
	}

	s.logger.Info().Str("author_id", id.String()).Str("by", actor.Username).Msg("author deleted")
	return nil
}

// bookFromForm resolves the references of form, collecting every unknown one
// as a field failure.
func (s *Service) bookFromForm(ctx context.Context, form BookForm) (*model.Book, error) {
	var failures []validation.FieldError

	if form.AuthorID != nil {
		if _, err := s.authors.FindByID(ctx, *form.AuthorID); err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			failures = append(failures, validation.FieldError{Field: "author_id", Rule: "exists", Message: "author does not exist"})
		}
	}
	if form.LanguageID != nil {
		if _, err := s.languages.FindByID(ctx, *form.LanguageID); err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			failures = append(failures, validation.FieldError{Field: "language_id", Rule: "exists", Message: "language does not exist"})
		}
	}

	genres, err := s.genres.FindByIDs(ctx, form.GenreIDs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(form.GenreIDs) {
		failures = append(failures, validation.FieldError{Field: "genre", Rule: "exists", Message: "genre does not exist"})
	}

	if len(failures) > 0 {
		return nil, &validation.Error{Fields: failures}
	}

	return &model.Book{
		Title:      form.Title,
		AuthorID:   form.AuthorID,
		LanguageID: form.LanguageID,
		ISBN:       form.ISBN,
		Summary:    form.Summary,
		Genres:     genres,
	}, nil
}

func (s *Service) CreateBook(ctx context.Context, values validation.Values, actor auth.Actor) (*model.Book, error) {
	if err := requireEdit(actor); err != nil {
		return nil, err
	}
	form, err := ParseBookForm(values)
	if err != nil {
		return nil, err
	}

	book, err := s.bookFromForm(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info().Str("book_id", book.ID.String()).Str("by", actor.Username).Msg("book created")
	return s.GetBook(ctx, book.ID)
}

func (s *Service) UpdateBook(ctx context.Context, id uuid.UUID, values validation.Values, actor auth.Actor) (*model.Book, error) {
	if err := requireEdit(actor); err != nil {
		return nil, err
	}
	form, err := ParseBookForm(values)
	if err != nil {
		return nil, err
	}

	if _, err := s.books.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("update book %s: %w", id, err)
	}

	book, err := s.bookFromForm(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("update book %s: %w", id, err)
	}
	book.ID = id
	if err := s.books.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book %s: %w", id, err)
	}
	return s.GetBook(ctx, id)
}

// DeleteBook removes the book; its copies stay on record without one.
func (s *Service) DeleteBook(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	if err := requireEdit(actor); err != nil {
		return err
	}
	if err := s.books.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}

	s.logger.Info().Str("book_id", id.String()).Str("by", actor.Username).Msg("book deleted")
	return nil
}

func (s *Service) CreateGenre(ctx context.Context, values validation.Values, actor auth.Actor) (*model.Genre, error) {
	if err := requireEdit(actor); err != nil {
		return nil, err
	}
	form, err := ParseGenreForm(values)
	if err != nil {
		return nil, err
	}

	genre := &model.Genre{Name: form.Name}
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, fmt.Errorf("create genre: %w", err)
	}
	return genre, nil
}

func (s *Service) CreateLanguage(ctx context.Context, values validation.Values, actor auth.Actor) (*model.Language, error) {
	if err := requireEdit(actor); err != nil {
		return nil, err
	}
	form, err := ParseLanguageForm(values)
	if err != nil {
		return nil, err
	}

	lang := &model.Language{Name: form.Name}
	if err := s.languages.Create(ctx, lang); err != nil {
		return nil, fmt.Errorf("create language: %w", err)
	}
	return lang, nil
}

func (s *Service) DeleteLanguage(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	if err := requireEdit(actor); err != nil {
		return err
	}
	if err := s.languages.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete language %s: %w", id, err)
	}
	return nil
}

// DeleteUser removes a reader. Their holds are released and any copy still on
// loan goes to maintenance before the user row is deleted.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	if err := requireEdit(actor); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	settled, err := s.loans.ReleaseBorrower(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	s.logger.Info().
		Str("user_id", id.String()).
		Str("by", actor.Username).
		Int("copies_settled", settled).
		Msg("user deleted")
	return nil
}
