package circulation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/model"
)

// Machine applies status transitions to a book copy.
type Machine struct {
	// MaxAheadDays bounds how far in the future a due date may be set.
	MaxAheadDays int
}

func invalidTransition(op string, from model.LoanStatus) error {
	return fmt.Errorf("%w: cannot %s a copy that is %s", apperr.ErrInvalidTransition, op, from)
}

func statusIn(s model.LoanStatus, allowed ...model.LoanStatus) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// ValidateDueDate rejects dates before today or more than MaxAheadDays after it.
func (m Machine) ValidateDueDate(due, today time.Time) error {
	due = model.DateOf(due)
	today = model.DateOf(today)

	if due.Before(today) {
		return apperr.ErrDateInPast
	}
	if due.After(today.AddDate(0, 0, m.MaxAheadDays)) {
		return apperr.ErrDateTooFarAhead
	}
	return nil
}

func (m Machine) Reserve(inst model.BookInstance, borrower uuid.UUID) (model.BookInstance, error) {
	if inst.Status != model.StatusAvailable || inst.BorrowerID != nil {
		return model.BookInstance{}, invalidTransition("reserve", inst.Status)
	}

	inst.Status = model.StatusReserved
	inst.BorrowerID = &borrower
	inst.DueBack = nil
	return inst, nil
}

// Checkout turns a hold into a loan. Only the holder or staff may do it.
func (m Machine) Checkout(inst model.BookInstance, actor auth.Actor, due, today time.Time) (model.BookInstance, error) {
	if inst.Status != model.StatusReserved {
		return model.BookInstance{}, invalidTransition("check out", inst.Status)
	}
	if !inst.IsBorrowedBy(actor.ID) && !actor.IsStaff() {
		return model.BookInstance{}, fmt.Errorf("%w: copy is reserved by another reader", apperr.ErrForbidden)
	}
	if err := m.ValidateDueDate(due, today); err != nil {
		return model.BookInstance{}, err
	}

	inst.Status = model.StatusOnLoan
	inst.DueBack = model.DatePtr(due)
	return inst, nil
}

func (m Machine) DirectCheckout(inst model.BookInstance, borrower uuid.UUID, due, today time.Time) (model.BookInstance, error) {
	if !statusIn(inst.Status, model.StatusAvailable, model.StatusMaintenance) {
		return model.BookInstance{}, invalidTransition("check out", inst.Status)
	}
	if err := m.ValidateDueDate(due, today); err != nil {
		return model.BookInstance{}, err
	}

	inst.Status = model.StatusOnLoan
	inst.BorrowerID = &borrower
	inst.DueBack = model.DatePtr(due)
	return inst, nil
}

func (m Machine) Return(inst model.BookInstance) (model.BookInstance, error) {
	if !statusIn(inst.Status, model.StatusOnLoan, model.StatusReserved) {
		return model.BookInstance{}, invalidTransition("return", inst.Status)
	}

	inst.Status = model.StatusAvailable
	inst.BorrowerID = nil
	inst.DueBack = nil
	return inst, nil
}

// Renew moves the due date of a current loan or hold. Nothing else changes.
func (m Machine) Renew(inst model.BookInstance, due, today time.Time) (model.BookInstance, error) {
	if !statusIn(inst.Status, model.StatusOnLoan, model.StatusReserved) {
		return model.BookInstance{}, invalidTransition("renew", inst.Status)
	}
	if err := m.ValidateDueDate(due, today); err != nil {
		return model.BookInstance{}, err
	}

	inst.DueBack = model.DatePtr(due)
	return inst, nil
}

// MarkMaintenance pulls the copy out of circulation from any state.
func (m Machine) MarkMaintenance(inst model.BookInstance, actor auth.Actor) (model.BookInstance, error) {
	if !actor.IsStaff() {
		return model.BookInstance{}, fmt.Errorf("%w: %s required", apperr.ErrForbidden, auth.PermMarkReturned)
	}

	inst.Status = model.StatusMaintenance
	inst.BorrowerID = nil
	inst.DueBack = nil
	return inst, nil
}

func (m Machine) Release(inst model.BookInstance, actor auth.Actor) (model.BookInstance, error) {
	if !actor.IsStaff() {
		return model.BookInstance{}, fmt.Errorf("%w: %s required", apperr.ErrForbidden, auth.PermMarkReturned)
	}
	if inst.Status != model.StatusMaintenance {
		return model.BookInstance{}, invalidTransition("release", inst.Status)
	}

	inst.Status = model.StatusAvailable
	return inst, nil
}

// DropBorrower settles a loan or hold whose borrower is leaving the library.
// A hold goes back on the shelf; a copy still out goes to maintenance until
// staff recover it.
func (m Machine) DropBorrower(inst model.BookInstance) (model.BookInstance, error) {
	switch inst.Status {
	case model.StatusReserved:
		inst.Status = model.StatusAvailable
	case model.StatusOnLoan:
		inst.Status = model.StatusMaintenance
	default:
		return model.BookInstance{}, invalidTransition("drop the borrower of", inst.Status)
	}

	inst.BorrowerID = nil
	inst.DueBack = nil
	return inst, nil
}
