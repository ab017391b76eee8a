package circulation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var machineToday = time.Date(2030, time.March, 10, 0, 0, 0, 0, time.UTC)

func days(n int) time.Time {
	return machineToday.AddDate(0, 0, n)
}

func copyIn(status model.LoanStatus, borrower *uuid.UUID, due *time.Time) model.BookInstance {
	return model.BookInstance{
		ID:         uuid.New(),
		Status:     status,
		BorrowerID: borrower,
		DueBack:    due,
	}
}

func Test_Machine_ValidateDueDate(t *testing.T) {
	m := Machine{MaxAheadDays: 28}

	for name, tc := range map[string]struct {
		due     time.Time
		wantErr error
	}{
		"yesterday":            {due: days(-1), wantErr: apperr.ErrDateInPast},
		"today":                {due: days(0)},
		"three weeks":          {due: days(21)},
		"four weeks":           {due: days(28)},
		"four weeks and a day": {due: days(29), wantErr: apperr.ErrDateTooFarAhead},
		"late in the day":      {due: days(28).Add(23 * time.Hour)},
	} {
		t.Run(name, func(t *testing.T) {
			err := m.ValidateDueDate(tc.due, machineToday)

			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func Test_Machine_Reserve(t *testing.T) {
	m := Machine{MaxAheadDays: 28}
	reader := uuid.New()

	t.Run("available copy becomes reserved", func(t *testing.T) {
		// act
		next, err := m.Reserve(copyIn(model.StatusAvailable, nil, nil), reader)

		// assert
		require.NoError(t, err)
		assert.Equal(t, model.StatusReserved, next.Status)
		assert.True(t, next.IsBorrowedBy(reader))
		assert.Nil(t, next.DueBack)
	})

	for _, status := range []model.LoanStatus{model.StatusOnLoan, model.StatusReserved, model.StatusMaintenance} {
		t.Run("rejects "+status.String(), func(t *testing.T) {
			_, err := m.Reserve(copyIn(status, nil, nil), reader)

			assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		})
	}
}

func Test_Machine_Checkout(t *testing.T) {
	m := Machine{MaxAheadDays: 28}
	holder := uuid.New()
	held := copyIn(model.StatusReserved, &holder, nil)

	t.Run("holder checks out", func(t *testing.T) {
		next, err := m.Checkout(held, auth.NewActor(holder, "holder"), days(21), machineToday)

		require.NoError(t, err)
		assert.Equal(t, model.StatusOnLoan, next.Status)
		assert.True(t, next.IsBorrowedBy(holder))
		require.NotNil(t, next.DueBack)
		assert.True(t, next.DueBack.Equal(days(21)))
	})

	t.Run("staff checks out for the holder", func(t *testing.T) {
		staff := auth.NewActor(uuid.New(), "librarian", auth.PermMarkReturned)

		next, err := m.Checkout(held, staff, days(7), machineToday)

		require.NoError(t, err)
		assert.True(t, next.IsBorrowedBy(holder))
	})

	t.Run("another reader is forbidden", func(t *testing.T) {
		_, err := m.Checkout(held, auth.NewActor(uuid.New(), "other"), days(7), machineToday)

		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("available copy cannot be checked out", func(t *testing.T) {
		_, err := m.Checkout(copyIn(model.StatusAvailable, nil, nil), auth.NewActor(holder, "holder"), days(7), machineToday)

		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})

	t.Run("due date is validated", func(t *testing.T) {
		_, err := m.Checkout(held, auth.NewActor(holder, "holder"), days(-1), machineToday)

		assert.ErrorIs(t, err, apperr.ErrDateInPast)
	})
}

func Test_Machine_DirectCheckout(t *testing.T) {
	m := Machine{MaxAheadDays: 28}
	reader := uuid.New()

	for _, status := range []model.LoanStatus{model.StatusAvailable, model.StatusMaintenance} {
		next, err := m.DirectCheckout(copyIn(status, nil, nil), reader, days(14), machineToday)

		require.NoError(t, err, status.String())
		assert.Equal(t, model.StatusOnLoan, next.Status)
		assert.True(t, next.IsBorrowedBy(reader))
	}

	_, err := m.DirectCheckout(copyIn(model.StatusOnLoan, &reader, model.DatePtr(days(3))), reader, days(14), machineToday)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func Test_Machine_Return_ClearsLoan(t *testing.T) {
	m := Machine{MaxAheadDays: 28}
	reader := uuid.New()

	for _, status := range []model.LoanStatus{model.StatusOnLoan, model.StatusReserved} {
		// arrange
		inst := copyIn(status, &reader, model.DatePtr(days(5)))

		// act
		next, err := m.Return(inst)

		// assert
		require.NoError(t, err)
		assert.Equal(t, model.StatusAvailable, next.Status)
		assert.Nil(t, next.BorrowerID)
		assert.Nil(t, next.DueBack)
		assert.Equal(t, status, inst.Status, "input copy must not change")
	}

	for _, status := range []model.LoanStatus{model.StatusAvailable, model.StatusMaintenance} {
		_, err := m.Return(copyIn(status, nil, nil))
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	}
}

func Test_Machine_Renew_ChangesOnlyDueBack(t *testing.T) {
	m := Machine{MaxAheadDays: 28}
	reader := uuid.New()
	inst := copyIn(model.StatusOnLoan, &reader, model.DatePtr(days(2)))
	inst.Imprint = "Penguin, 1998"

	next, err := m.Renew(inst, days(21), machineToday)

	require.NoError(t, err)
	assert.True(t, next.DueBack.Equal(days(21)))
	assert.Equal(t, inst.Status, next.Status)
	assert.Equal(t, inst.BorrowerID, next.BorrowerID)
	assert.Equal(t, inst.Imprint, next.Imprint)

	_, err = m.Renew(copyIn(model.StatusAvailable, nil, nil), days(21), machineToday)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = m.Renew(inst, days(29), machineToday)
	assert.ErrorIs(t, err, apperr.ErrDateTooFarAhead)
}

func Test_Machine_Maintenance(t *testing.T) {
	m := Machine{MaxAheadDays: 28}
	staff := auth.NewActor(uuid.New(), "librarian", auth.PermMarkReturned)
	reader := uuid.New()

	next, err := m.MarkMaintenance(copyIn(model.StatusOnLoan, &reader, model.DatePtr(days(1))), staff)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, next.Status)
	assert.Nil(t, next.BorrowerID)
	assert.Nil(t, next.DueBack)

	released, err := m.Release(next, staff)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, released.Status)

	_, err = m.Release(released, staff)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = m.MarkMaintenance(released, auth.NewActor(reader, "reader"))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func Test_BookInstance_IsOverdue_AnyStatus(t *testing.T) {
	now := machineToday.Add(15 * time.Hour)

	for _, status := range []model.LoanStatus{model.StatusOnLoan, model.StatusReserved, model.StatusAvailable, model.StatusMaintenance} {
		assert.True(t, copyIn(status, nil, model.DatePtr(days(-1))).IsOverdue(now), status.String())
		assert.False(t, copyIn(status, nil, model.DatePtr(days(0))).IsOverdue(now), status.String())
		assert.False(t, copyIn(status, nil, nil).IsOverdue(now), status.String())
	}
}

func Test_Machine_DropBorrower(t *testing.T) {
	m := Machine{MaxAheadDays: 28}
	reader := uuid.New()
	due := days(5)

	t.Run("hold goes back on the shelf", func(t *testing.T) {
		in := copyIn(model.StatusReserved, &reader, &due)

		out, err := m.DropBorrower(in)

		require.NoError(t, err)
		assert.Equal(t, model.StatusAvailable, out.Status)
		assert.Nil(t, out.BorrowerID)
		assert.Nil(t, out.DueBack)
		assert.Equal(t, model.StatusReserved, in.Status, "input must not change")
	})

	t.Run("loan goes to maintenance", func(t *testing.T) {
		out, err := m.DropBorrower(copyIn(model.StatusOnLoan, &reader, &due))

		require.NoError(t, err)
		assert.Equal(t, model.StatusMaintenance, out.Status)
		assert.Nil(t, out.BorrowerID)
		assert.Nil(t, out.DueBack)
	})

	for _, status := range []model.LoanStatus{model.StatusAvailable, model.StatusMaintenance} {
		t.Run("rejects "+status.String(), func(t *testing.T) {
			_, err := m.DropBorrower(copyIn(status, nil, nil))

			assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		})
	}
}
