package circulation

import "fmt"

// ReservationMode selects what a reader's reservation does to a copy.
type ReservationMode string

const (
	// ModeCheckout lends the copy straight away for the loan period.
	ModeCheckout ReservationMode = "checkout"
	// ModeHold places a hold; staff or the reader checks it out later.
	ModeHold ReservationMode = "hold"
)

type Policy struct {
	ReservationMode     ReservationMode `toml:"reservation_mode"`
	LoanPeriodDays      int             `toml:"loan_period_days"`
	MaxAheadDays        int             `toml:"max_ahead_days"`
	ProposedRenewalDays int             `toml:"proposed_renewal_days"`
}

func DefaultPolicy() Policy {
	return Policy{
		ReservationMode:     ModeCheckout,
		LoanPeriodDays:      21,
		MaxAheadDays:        28,
		ProposedRenewalDays: 21,
	}
}

func (p Policy) Validate() error {
	switch p.ReservationMode {
	case ModeCheckout, ModeHold:
	default:
		return fmt.Errorf("unknown reservation mode %q", p.ReservationMode)
	}
	if p.MaxAheadDays < 0 {
		return fmt.Errorf("max_ahead_days must not be negative, got %d", p.MaxAheadDays)
	}
	if p.LoanPeriodDays < 0 || p.LoanPeriodDays > p.MaxAheadDays {
		return fmt.Errorf("loan_period_days must be between 0 and max_ahead_days (%d), got %d", p.MaxAheadDays, p.LoanPeriodDays)
	}
	if p.ProposedRenewalDays < 0 || p.ProposedRenewalDays > p.MaxAheadDays {
		return fmt.Errorf("proposed_renewal_days must be between 0 and max_ahead_days (%d), got %d", p.MaxAheadDays, p.ProposedRenewalDays)
	}
	return nil
}
