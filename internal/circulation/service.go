package circulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/observability"
	"github.com/snnyvrz/locallibrary/internal/repository"
	"github.com/snnyvrz/locallibrary/internal/validation"
)

type BookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Service runs the loan and reservation workflows on top of Machine.
// Permission and date checks happen before anything is written; writes are
// optimistic and retried when another request changed the copy first.
type Service struct {
	instances repository.InstanceRepository
	books     BookFinder
	users     UserFinder

	policy  Policy
	machine Machine
	now     func() time.Time
	loc     *time.Location
	retry   []RetryOption
	logger  zerolog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithRetryOptions(opts ...RetryOption) Option {
	return func(s *Service) { s.retry = append(s.retry, opts...) }
}

func NewService(instances repository.InstanceRepository, books BookFinder, users UserFinder, policy Policy, opts ...Option) *Service {
	s := &Service{
		instances: instances,
		books:     books,
		users:     users,
		policy:    policy,
		machine:   Machine{MaxAheadDays: policy.MaxAheadDays},
		now:       time.Now,
		loc:       time.Local,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Today is the current calendar date in the library's time zone.
func (s *Service) Today() time.Time {
	return model.DateOf(s.now().In(s.loc))
}

// ProposedRenewalDate is the date offered by default on the renewal form.
func (s *Service) ProposedRenewalDate(today time.Time) time.Time {
	return model.DateOf(today).AddDate(0, 0, s.policy.ProposedRenewalDays)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
	inst, err := s.instances.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book instance %s: %w", id, err)
	}
	return inst, nil
}

type decideFunc func(inst model.BookInstance, today time.Time) (model.BookInstance, error)

// mutate loads the copy, lets decide compute its next state and saves it
// against the version that was read. On a version conflict the whole cycle
// runs again, so decide always sees the latest state.
func (s *Service) mutate(ctx context.Context, op string, id uuid.UUID, decide decideFunc) (*model.BookInstance, error) {
	var from, to model.LoanStatus

	attempts, err := retryOnConflict(ctx, func(ctx context.Context) error {
		cur, err := s.instances.FindByID(ctx, id)
		if err != nil {
			return err
		}

		next, err := decide(*cur, s.Today())
		if err != nil {
			return err
		}

		if err := s.instances.SaveState(ctx, &next, cur.Version); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				observability.RecordConflict(op)
				s.logger.Warn().
					Str("op", op).
					Str("instance_id", id.String()).
					Int("version", cur.Version).
					Msg("concurrent update, retrying")
			}
			return err
		}

		from, to = cur.Status, next.Status
		return nil
	}, s.retry...)
	if err != nil {
		return nil, fmt.Errorf("%s book instance %s: %w", op, id, err)
	}

	observability.RecordTransition(op, from.String(), to.String())
	s.logger.Debug().
		Str("op", op).
		Str("instance_id", id.String()).
		Str("from", from.String()).
		Str("to", to.String()).
		Int("attempts", attempts).
		Msg("book instance updated")

	inst, err := s.instances.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s book instance %s: reload: %w", op, id, err)
	}
	return inst, nil
}

func forbidden(reason string) error {
	return fmt.Errorf("%w: %s", apperr.ErrForbidden, reason)
}

func requireStaff(actor auth.Actor) error {
	if !actor.IsStaff() {
		return forbidden(auth.PermMarkReturned + " required")
	}
	return nil
}

// Renew moves the due date of a loan. Staff may renew any loan, readers only
// their own.
func (s *Service) Renew(ctx context.Context, id uuid.UUID, due time.Time, actor auth.Actor) (*model.BookInstance, error) {
	if actor.Anonymous() {
		return nil, forbidden("login required")
	}
	if err := s.machine.ValidateDueDate(due, s.Today()); err != nil {
		return nil, err
	}

	return s.mutate(ctx, "renew", id, func(inst model.BookInstance, today time.Time) (model.BookInstance, error) {
		if !actor.IsStaff() && !inst.IsBorrowedBy(actor.ID) {
			return model.BookInstance{}, forbidden("only the borrower or staff can renew")
		}
		return s.machine.Renew(inst, due, today)
	})
}

// RenewAsLibrarian is the staff-only renewal.
func (s *Service) RenewAsLibrarian(ctx context.Context, id uuid.UUID, due time.Time, actor auth.Actor) (*model.BookInstance, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := s.machine.ValidateDueDate(due, s.Today()); err != nil {
		return nil, err
	}

	return s.mutate(ctx, "renew", id, func(inst model.BookInstance, today time.Time) (model.BookInstance, error) {
		return s.machine.Renew(inst, due, today)
	})
}

// ReserveForSelf claims an available copy for the actor. Depending on the
// reservation mode the copy goes on loan right away or is held.
func (s *Service) ReserveForSelf(ctx context.Context, id uuid.UUID, actor auth.Actor) (*model.BookInstance, error) {
	if actor.Anonymous() {
		return nil, forbidden("login required")
	}

	return s.mutate(ctx, "reserve", id, func(inst model.BookInstance, today time.Time) (model.BookInstance, error) {
		if inst.Status != model.StatusAvailable {
			return model.BookInstance{}, fmt.Errorf("%w: copy is %s", apperr.ErrNotAvailable, inst.Status)
		}

		if s.policy.ReservationMode == ModeHold {
			return s.machine.Reserve(inst, actor.ID)
		}
		due := today.AddDate(0, 0, s.policy.LoanPeriodDays)
		return s.machine.DirectCheckout(inst, actor.ID, due, today)
	})
}

// Checkout turns a hold into a loan. A nil due date means the standard loan
// period.
func (s *Service) Checkout(ctx context.Context, id uuid.UUID, due *time.Time, actor auth.Actor) (*model.BookInstance, error) {
	if actor.Anonymous() {
		return nil, forbidden("login required")
	}
	if due != nil {
		if err := s.machine.ValidateDueDate(*due, s.Today()); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, "checkout", id, func(inst model.BookInstance, today time.Time) (model.BookInstance, error) {
		d := today.AddDate(0, 0, s.policy.LoanPeriodDays)
		if due != nil {
			d = *due
		}
		return s.machine.Checkout(inst, actor, d, today)
	})
}

// LendTo lends a copy to a reader at the desk, without a prior hold.
func (s *Service) LendTo(ctx context.Context, id, borrowerID uuid.UUID, due time.Time, actor auth.Actor) (*model.BookInstance, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := s.machine.ValidateDueDate(due, s.Today()); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, borrowerID); err != nil {
		return nil, fmt.Errorf("lend book instance %s: borrower %s: %w", id, borrowerID, err)
	}

	return s.mutate(ctx, "lend", id, func(inst model.BookInstance, today time.Time) (model.BookInstance, error) {
		return s.machine.DirectCheckout(inst, borrowerID, due, today)
	})
}

// ReturnCopy makes the copy available again. With requirePermission the actor
// must be staff; otherwise the actor must be the current borrower.
func (s *Service) ReturnCopy(ctx context.Context, id uuid.UUID, actor auth.Actor, requirePermission bool) (*model.BookInstance, error) {
	if requirePermission {
		if err := requireStaff(actor); err != nil {
			return nil, err
		}
	} else if actor.Anonymous() {
		return nil, forbidden("login required")
	}

	return s.mutate(ctx, "return", id, func(inst model.BookInstance, today time.Time) (model.BookInstance, error) {
		if !requirePermission && !inst.IsBorrowedBy(actor.ID) {
			return model.BookInstance{}, forbidden("copy is not borrowed by you")
		}
		return s.machine.Return(inst)
	})
}

func (s *Service) ReturnOwn(ctx context.Context, id uuid.UUID, actor auth.Actor) (*model.BookInstance, error) {
	return s.ReturnCopy(ctx, id, actor, false)
}

func (s *Service) MarkReturned(ctx context.Context, id uuid.UUID, actor auth.Actor) (*model.BookInstance, error) {
	return s.ReturnCopy(ctx, id, actor, true)
}

func (s *Service) MarkMaintenance(ctx context.Context, id uuid.UUID, actor auth.Actor) (*model.BookInstance, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	return s.mutate(ctx, "maintain", id, func(inst model.BookInstance, today time.Time) (model.BookInstance, error) {
		return s.machine.MarkMaintenance(inst, actor)
	})
}

func (s *Service) ReleaseFromMaintenance(ctx context.Context, id uuid.UUID, actor auth.Actor) (*model.BookInstance, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	return s.mutate(ctx, "release", id, func(inst model.BookInstance, today time.Time) (model.BookInstance, error) {
		return s.machine.Release(inst, actor)
	})
}

const releasePageSize = 100

var errBorrowerChanged = errors.New("copy changed hands")

// ReleaseBorrower settles every loan and hold of userID through DropBorrower.
// Callers authorize the change. It returns how many copies were settled.
func (s *Service) ReleaseBorrower(ctx context.Context, userID uuid.UUID) (int, error) {
	var ids []uuid.UUID
	for page := 1; ; page++ {
		result, err := s.instances.List(ctx, repository.InstanceListParams{
			Window:     repository.Window{Page: page, PageSize: releasePageSize},
			BorrowerID: &userID,
			Statuses:   []model.LoanStatus{model.StatusOnLoan, model.StatusReserved},
		})
		if err != nil {
			return 0, fmt.Errorf("release borrower %s: %w", userID, err)
		}
		for _, inst := range result.Instances {
			ids = append(ids, inst.ID)
		}
		if len(result.Instances) < releasePageSize || int64(len(ids)) >= result.Total {
			break
		}
	}

	settled := 0
	for _, id := range ids {
		_, err := s.mutate(ctx, "drop borrower", id, func(inst model.BookInstance, today time.Time) (model.BookInstance, error) {
			if !inst.IsBorrowedBy(userID) {
				return model.BookInstance{}, errBorrowerChanged
			}
			return s.machine.DropBorrower(inst)
		})
		switch {
		case err == nil:
			settled++
		case errors.Is(err, errBorrowerChanged), errors.Is(err, apperr.ErrNotFound):
		default:
			return settled, err
		}
	}
	return settled, nil
}

// CreateBookCopy adds a physical copy of a book.
func (s *Service) CreateBookCopy(ctx context.Context, bookID uuid.UUID, values validation.Values, actor auth.Actor) (*model.BookInstance, error) {
	if !actor.Has(auth.PermEdit) {
		return nil, forbidden(auth.PermEdit + " required")
	}

	form, err := ParseCopyForm(values)
	if err != nil {
		return nil, err
	}

	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return nil, fmt.Errorf("create copy of book %s: %w", bookID, err)
	}

	inst := &model.BookInstance{
		BookID:  &bookID,
		Imprint: form.Imprint,
		Status:  form.Status,
	}
	if err := s.instances.Create(ctx, inst); err != nil {
		return nil, fmt.Errorf("create copy of book %s: %w", bookID, err)
	}

	s.logger.Debug().
		Str("instance_id", inst.ID.String()).
		Str("book_id", bookID.String()).
		Str("status", inst.Status.String()).
		Msg("book instance created")

	return s.instances.FindByID(ctx, inst.ID)
}
