package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoanStatus string

const (
	StatusMaintenance LoanStatus = "m"
	StatusOnLoan      LoanStatus = "o"
	StatusAvailable   LoanStatus = "a"
	StatusReserved    LoanStatus = "r"
)

var loanStatusNames = map[LoanStatus]string{
	StatusMaintenance: "maintenance",
	StatusOnLoan:      "on_loan",
	StatusAvailable:   "available",
	StatusReserved:    "reserved",
}

func (s LoanStatus) String() string {
	if name, ok := loanStatusNames[s]; ok {
		return name
	}
	return string(s)
}

func (s LoanStatus) Valid() bool {
	_, ok := loanStatusNames[s]
	return ok
}

// ParseLoanStatus accepts either the stored code ("a") or the name ("available").
func ParseLoanStatus(s string) (LoanStatus, bool) {
	if st := LoanStatus(s); st.Valid() {
		return st, true
	}
	for st, name := range loanStatusNames {
		if name == s {
			return st, true
		}
	}
	return "", false
}

type BookInstance struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookID     *uuid.UUID `gorm:"type:uuid;index"`
	Book       *Book      `gorm:"constraint:OnDelete:SET NULL;"`
	Imprint    string     `gorm:"size:200;not null"`
	DueBack    *time.Time `gorm:"type:date;index"`
	Status     LoanStatus `gorm:"size:1;not null;index"`
	BorrowerID *uuid.UUID `gorm:"type:uuid;index"`
	Borrower   *User      `gorm:"constraint:OnDelete:SET NULL;"`
	Version    int        `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (i *BookInstance) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = StatusAvailable
	}
	return
}

// IsOverdue reports whether the copy was due back before the calendar day of now.
// The status is deliberately ignored.
func (i BookInstance) IsOverdue(now time.Time) bool {
	if i.DueBack == nil {
		return false
	}
	return DateOf(*i.DueBack).Before(DateOf(now))
}

// IsBorrowedBy reports whether userID currently holds the copy.
func (i BookInstance) IsBorrowedBy(userID uuid.UUID) bool {
	return i.BorrowerID != nil && *i.BorrowerID == userID
}

// AllModels lists every table in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&Genre{},
		&Language{},
		&Author{},
		&Book{},
		&BookInstance{},
	}
}
