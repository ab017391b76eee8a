package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/model"
	"gorm.io/gorm"
)

const (
	// copies without a due date sort after dated ones
	instanceDefaultOrder = "book_instances.due_back IS NULL, book_instances.due_back ASC, book_instances.created_at ASC"

	SortDueBack   = "due_back"
	SortBookTitle = "book_title"
)

type InstanceListParams struct {
	Window
	BookID          *uuid.UUID
	BorrowerID      *uuid.UUID
	Statuses        []model.LoanStatus
	RequireBook     bool
	RequireBorrower bool
	Sort            string
}

type InstanceListResult struct {
	Instances []model.BookInstance
	Total     int64
}

type InstanceRepository interface {
	Create(ctx context.Context, inst *model.BookInstance) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	// SaveState persists status, borrower and due date if the stored version
	// still equals expectedVersion.
	SaveState(ctx context.Context, inst *model.BookInstance, expectedVersion int) error
	List(ctx context.Context, params InstanceListParams) (InstanceListResult, error)
}

type GormInstanceRepository struct {
	db *gorm.DB
}

func NewInstanceRepository(db *gorm.DB) *GormInstanceRepository {
	return &GormInstanceRepository{db: db}
}

func (r *GormInstanceRepository) Create(ctx context.Context, inst *model.BookInstance) error {
	if err := r.db.WithContext(ctx).Create(inst).Error; err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: book does not exist", apperr.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *GormInstanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
	var inst model.BookInstance
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Borrower").
		First(&inst, "id = ?", id).Error; err != nil {

		return nil, notFound(err)
	}
	return &inst, nil
}

func (r *GormInstanceRepository) SaveState(ctx context.Context, inst *model.BookInstance, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&model.BookInstance{}).
		Where("id = ? AND version = ?", inst.ID, expectedVersion).
		Updates(map[string]any{
			"status":      inst.Status,
			"borrower_id": uuidOrNil(inst.BorrowerID),
			"due_back":    timeOrNil(inst.DueBack),
			"version":     expectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&model.BookInstance{}).
			Where("id = ?", inst.ID).
			Count(&count).Error; err != nil {

			return err
		}
		if count == 0 {
			return notFound(gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("%w: book instance %s changed since version %d", apperr.ErrConflict, inst.ID, expectedVersion)
	}

	inst.Version = expectedVersion + 1
	return nil
}

func instanceFilter(params InstanceListParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Sort == SortBookTitle || params.RequireBook {
			db = db.Joins("JOIN books ON books.id = book_instances.book_id")
		}
		if params.BookID != nil {
			db = db.Where("book_instances.book_id = ?", *params.BookID)
		}
		if params.BorrowerID != nil {
			db = db.Where("book_instances.borrower_id = ?", *params.BorrowerID)
		}
		if len(params.Statuses) > 0 {
			db = db.Where("book_instances.status IN ?", params.Statuses)
		}
		if params.RequireBorrower {
			db = db.Where("book_instances.borrower_id IS NOT NULL")
		}
		return db
	}
}

func (r *GormInstanceRepository) List(ctx context.Context, params InstanceListParams) (InstanceListResult, error) {
	var result InstanceListResult

	if params.Sort == SortBookTitle && !params.RequireBook {
		return InstanceListResult{}, errors.New("sorting by book title requires RequireBook")
	}

	if err := r.db.WithContext(ctx).
		Model(&model.BookInstance{}).
		Scopes(instanceFilter(params)).
		Count(&result.Total).Error; err != nil {

		return InstanceListResult{}, err
	}

	order := instanceDefaultOrder
	if params.Sort == SortBookTitle {
		order = "books.title ASC, " + instanceDefaultOrder
	}

	if err := r.db.WithContext(ctx).
		Select("book_instances.*").
		Scopes(instanceFilter(params), paginate(params.Window)).
		Preload("Book").
		Preload("Borrower").
		Order(order).
		Find(&result.Instances).Error; err != nil {

		return InstanceListResult{}, err
	}

	return result, nil
}
