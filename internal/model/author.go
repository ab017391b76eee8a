package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Author struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FirstName   string     `gorm:"size:100;not null;index"`
	LastName    string     `gorm:"size:100;not null;index"`
	DateOfBirth *time.Time `gorm:"type:date"`
	DateOfDeath *time.Time `gorm:"type:date"`
	Books       []Book     `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Author) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

func (a Author) String() string {
	return a.LastName + ", " + a.FirstName
}
