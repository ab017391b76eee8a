// Package circulation implements the loan lifecycle of a book copy.
//
// Machine holds the availability state machine: every status change of a
// model.BookInstance goes through one of its methods, which take the copy by
// value and either return the next state or an error, never both. Service
// wraps the machine with permission checks, due-date rules and optimistic
// persistence.
//
//	Available   --reserve-------->  Reserved
//	Reserved    --checkout------->  OnLoan
//	Available,
//	Maintenance --directCheckout->  OnLoan
//	OnLoan,
//	Reserved    --return--------->  Available
//	any         --markMaintenance>  Maintenance
//	Maintenance --release-------->  Available
package circulation
