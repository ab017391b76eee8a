package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Genre struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:200;not null"`
	CreatedAt time.Time
}

func (g *Genre) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return
}

type Language struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:50;not null;uniqueIndex"`
	CreatedAt time.Time
}

func (l *Language) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

type Book struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Title      string         `gorm:"size:200;not null;index"`
	AuthorID   *uuid.UUID     `gorm:"type:uuid;index"`
	Author     *Author        `gorm:"constraint:OnDelete:SET NULL;"`
	Summary    string         `gorm:"size:1000"`
	ISBN       string         `gorm:"column:isbn;size:13"`
	Genres     []Genre        `gorm:"many2many:book_genres;"`
	LanguageID *uuid.UUID     `gorm:"type:uuid;index"`
	Language   *Language      `gorm:"constraint:OnDelete:SET NULL;"`
	Instances  []BookInstance `gorm:"foreignKey:BookID;constraint:OnDelete:SET NULL;"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// DisplayGenre joins the names of the first three genres.
func (b Book) DisplayGenre() string {
	names := make([]string, 0, 3)
	for i, g := range b.Genres {
		if i == 3 {
			break
		}
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}
