package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/model"
	"gorm.io/gorm"
)

type AuthorListParams struct {
	Window
	// Query is split on whitespace; every token must match the first or the last name.
	Query string
}

type AuthorListResult struct {
	Authors []model.Author
	Total   int64
}

type AuthorRepository interface {
	Create(ctx context.Context, author *model.Author) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	List(ctx context.Context, params AuthorListParams) (AuthorListResult, error)
	Update(ctx context.Context, author *model.Author) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormAuthorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) *GormAuthorRepository {
	return &GormAuthorRepository{db: db}
}

func (r *GormAuthorRepository) Create(ctx context.Context, author *model.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

func (r *GormAuthorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	var author model.Author
	if err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("books.title ASC")
		}).
		First(&author, "id = ?", id).Error; err != nil {

		return nil, notFound(err)
	}
	return &author, nil
}

func authorSearch(query string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, token := range strings.Fields(query) {
			p := containsPattern(token)
			db = db.Where(
				`(LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\')`,
				p, p,
			)
		}
		return db
	}
}

func (r *GormAuthorRepository) List(ctx context.Context, params AuthorListParams) (AuthorListResult, error) {
	var result AuthorListResult

	if err := r.db.WithContext(ctx).
		Model(&model.Author{}).
		Scopes(authorSearch(params.Query)).
		Count(&result.Total).Error; err != nil {

		return AuthorListResult{}, err
	}

	if err := r.db.WithContext(ctx).
		Scopes(authorSearch(params.Query), paginate(params.Window)).
		Order("last_name ASC, first_name ASC, id ASC").
		Find(&result.Authors).Error; err != nil {

		return AuthorListResult{}, err
	}

	return result, nil
}

func (r *GormAuthorRepository) Update(ctx context.Context, author *model.Author) error {
	result := r.db.WithContext(ctx).
		Model(&model.Author{}).
		Where("id = ?", author.ID).
		Updates(map[string]any{
			"first_name":    author.FirstName,
			"last_name":     author.LastName,
			"date_of_birth": timeOrNil(author.DateOfBirth),
			"date_of_death": timeOrNil(author.DateOfDeath),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes the author; their books stay with no author.
func (r *GormAuthorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Book{}).
			Where("author_id = ?", id).
			Update("author_id", nil).Error; err != nil {

			return err
		}

		result := tx.Delete(&model.Author{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound)
		}
		return nil
	})
}
