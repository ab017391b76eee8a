package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the local record of an externally authenticated account.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"size:150;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
