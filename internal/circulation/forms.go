package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/validation"
)

type CopyForm struct {
	Imprint string           `form:"imprint" validate:"required,max=200"`
	Status  model.LoanStatus `form:"status" validate:"omitempty,oneof=a m"`
}

// ParseCopyForm reads the fields staff may set on a new copy. A copy starts
// either available or in maintenance.
func ParseCopyForm(values validation.Values) (CopyForm, error) {
	d := validation.NewDecoder(values)
	form := CopyForm{
		Imprint: d.String("imprint"),
		Status:  model.LoanStatus(d.String("status")),
	}
	if err := d.Finish(&form); err != nil {
		return CopyForm{}, err
	}
	if form.Status == "" {
		form.Status = model.StatusAvailable
	}
	return form, nil
}

type RenewForm struct {
	DueBack *time.Time `form:"due_back" validate:"required"`
}

func ParseRenewForm(values validation.Values) (RenewForm, error) {
	d := validation.NewDecoder(values)
	form := RenewForm{DueBack: d.Date("due_back")}
	if err := d.Finish(&form); err != nil {
		return RenewForm{}, err
	}
	return form, nil
}

type LendForm struct {
	BorrowerID *uuid.UUID `form:"borrower_id" validate:"required"`
	DueBack    *time.Time `form:"due_back" validate:"required"`
}

func ParseLendForm(values validation.Values) (LendForm, error) {
	d := validation.NewDecoder(values)
	form := LendForm{
		BorrowerID: d.UUID("borrower_id"),
		DueBack:    d.Date("due_back"),
	}
	if err := d.Finish(&form); err != nil {
		return LendForm{}, err
	}
	return form, nil
}

// CheckoutForm carries an optional due date; the loan period applies when it
// is missing.
type CheckoutForm struct {
	DueBack *time.Time `form:"due_back"`
}

func ParseCheckoutForm(values validation.Values) (CheckoutForm, error) {
	d := validation.NewDecoder(values)
	form := CheckoutForm{DueBack: d.Date("due_back")}
	if err := d.Finish(&form); err != nil {
		return CheckoutForm{}, err
	}
	return form, nil
}
