package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Window is a page request after normalization.
type Window struct {
	Page     int
	PageSize int
}

func (w Window) normalized() Window {
	if w.Page < 1 {
		w.Page = 1
	}
	if w.PageSize < 1 {
		w.PageSize = 10
	}
	return w
}

func (w Window) offset() int {
	return (w.Page - 1) * w.PageSize
}

func paginate(w Window) func(db *gorm.DB) *gorm.DB {
	w = w.normalized()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(w.offset()).Limit(w.PageSize)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern for use with
// `LOWER(col) LIKE ? ESCAPE '\'`.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
