package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/validation"
	"gorm.io/gorm"
)

type BookListParams struct {
	Window
	// Query matches title or the author's first or last name.
	Query string
}

type BookListResult struct {
	Books []model.Book
	Total int64
}

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, params BookListParams) (BookListResult, error)
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormBookRepository struct {
	db *gorm.DB
}

func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

func (r *GormBookRepository) Create(ctx context.Context, book *model.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if isForeignKeyViolation(err) {
			return validation.FieldFailure("author_id", "exists", "author or language does not exist")
		}
		return err
	}
	return nil
}

func (r *GormBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Language").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.name ASC")
		}).
		Preload("Instances", func(db *gorm.DB) *gorm.DB {
			return db.Order(instanceDefaultOrder)
		}).
		Preload("Instances.Borrower").
		First(&book, "id = ?", id).Error; err != nil {

		return nil, notFound(err)
	}
	return &book, nil
}

func bookSearch(query string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("LEFT JOIN authors ON authors.id = books.author_id")
		if query == "" {
			return db
		}
		p := containsPattern(query)
		return db.Where(
			`LOWER(books.title) LIKE ? ESCAPE '\' OR LOWER(authors.first_name) LIKE ? ESCAPE '\' OR LOWER(authors.last_name) LIKE ? ESCAPE '\'`,
			p, p, p,
		)
	}
}

func (r *GormBookRepository) List(ctx context.Context, params BookListParams) (BookListResult, error) {
	var result BookListResult

	if err := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Scopes(bookSearch(params.Query)).
		Count(&result.Total).Error; err != nil {

		return BookListResult{}, err
	}

	if err := r.db.WithContext(ctx).
		Select("books.*").
		Scopes(bookSearch(params.Query), paginate(params.Window)).
		Preload("Author").
		Preload("Language").
		Preload("Genres").
		Order("books.title ASC, books.id ASC").
		Find(&result.Books).Error; err != nil {

		return BookListResult{}, err
	}

	return result, nil
}

func (r *GormBookRepository) Update(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Book{}).
			Where("id = ?", book.ID).
			Updates(map[string]any{
				"title":       book.Title,
				"summary":     book.Summary,
				"isbn":        book.ISBN,
				"author_id":   uuidOrNil(book.AuthorID),
				"language_id": uuidOrNil(book.LanguageID),
			}).Error; err != nil {

			if isForeignKeyViolation(err) {
				return validation.FieldFailure("author_id", "exists", "author or language does not exist")
			}
			return err
		}

		if err := tx.Model(book).Association("Genres").Replace(book.Genres); err != nil {
			return fmt.Errorf("replace genres: %w", err)
		}
		return nil
	})
}

// Delete removes the book and clears the book reference of its copies.
func (r *GormBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.BookInstance{}).
			Where("book_id = ?", id).
			Update("book_id", nil).Error; err != nil {

			return err
		}

		if err := tx.Exec("DELETE FROM book_genres WHERE book_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Book{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound)
		}
		return nil
	})
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
