package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/validation"
	"gorm.io/gorm"
)

type GenreRepository interface {
	Create(ctx context.Context, genre *model.Genre) error
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Genre, error)
	List(ctx context.Context, w Window) ([]model.Genre, int64, error)
}

type LanguageRepository interface {
	Create(ctx context.Context, lang *model.Language) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Language, error)
	List(ctx context.Context, w Window) ([]model.Language, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormGenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GormGenreRepository {
	return &GormGenreRepository{db: db}
}

func (r *GormGenreRepository) Create(ctx context.Context, genre *model.Genre) error {
	return r.db.WithContext(ctx).Create(genre).Error
}

func (r *GormGenreRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Genre, error) {
	var genres []model.Genre
	if len(ids) == 0 {
		return genres, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&genres).Error; err != nil {

		return nil, err
	}
	return genres, nil
}

func (r *GormGenreRepository) List(ctx context.Context, w Window) ([]model.Genre, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Genre{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var genres []model.Genre
	if err := r.db.WithContext(ctx).
		Scopes(paginate(w)).
		Order("name ASC, id ASC").
		Find(&genres).Error; err != nil {

		return nil, 0, err
	}
	return genres, total, nil
}

type GormLanguageRepository struct {
	db *gorm.DB
}

func NewLanguageRepository(db *gorm.DB) *GormLanguageRepository {
	return &GormLanguageRepository{db: db}
}

func (r *GormLanguageRepository) Create(ctx context.Context, lang *model.Language) error {
	if err := r.db.WithContext(ctx).Create(lang).Error; err != nil {
		if isUniqueViolation(err) {
			return validation.FieldFailure("name", "unique", "language with this name already exists")
		}
		return err
	}
	return nil
}

func (r *GormLanguageRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Language, error) {
	var lang model.Language
	if err := r.db.WithContext(ctx).First(&lang, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &lang, nil
}

func (r *GormLanguageRepository) List(ctx context.Context, w Window) ([]model.Language, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Language{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var langs []model.Language
	if err := r.db.WithContext(ctx).
		Scopes(paginate(w)).
		Order("name ASC").
		Find(&langs).Error; err != nil {

		return nil, 0, err
	}
	return langs, total, nil
}

// Delete removes the language; books written in it keep no language.
func (r *GormLanguageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Book{}).
			Where("language_id = ?", id).
			Update("language_id", nil).Error; err != nil {

			return err
		}

		result := tx.Delete(&model.Language{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound)
		}
		return nil
	})
}
