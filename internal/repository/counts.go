package repository

import (
	"context"
	"fmt"

	"github.com/snnyvrz/locallibrary/internal/model"
	"gorm.io/gorm"
)

type CatalogCounts struct {
	Books              int64 `json:"books"`
	Instances          int64 `json:"instances"`
	AvailableInstances int64 `json:"available_instances"`
	Authors            int64 `json:"authors"`
	Genres             int64 `json:"genres"`
	TitledBooks        int64 `json:"titled_books"`
}

type CountRepository interface {
	Counts(ctx context.Context) (CatalogCounts, error)
}

type GormCountRepository struct {
	db *gorm.DB
}

func NewCountRepository(db *gorm.DB) *GormCountRepository {
	return &GormCountRepository{db: db}
}

func (r *GormCountRepository) Counts(ctx context.Context) (CatalogCounts, error) {
	var c CatalogCounts
	db := r.db.WithContext(ctx)

	for _, q := range []struct {
		name  string
		query *gorm.DB
		dst   *int64
	}{
		{"books", db.Model(&model.Book{}), &c.Books},
		{"instances", db.Model(&model.BookInstance{}), &c.Instances},
		{"available instances", db.Model(&model.BookInstance{}).Where("status = ?", model.StatusAvailable), &c.AvailableInstances},
		{"authors", db.Model(&model.Author{}), &c.Authors},
		{"genres", db.Model(&model.Genre{}), &c.Genres},
		{"titled books", db.Model(&model.Book{}).Where("title <> ''"), &c.TitledBooks},
	} {
		if err := q.query.Count(q.dst).Error; err != nil {
			return CatalogCounts{}, fmt.Errorf("count %s: %w", q.name, err)
		}
	}

	return c, nil
}
