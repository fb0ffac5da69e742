package game

import "fmt"

// ErrorKind classifies why an operation was rejected
type ErrorKind string

// Rejection kinds returned by Manager operations
const (
	ErrRoundClosed         ErrorKind = "round_closed"
	ErrInvalidStake        ErrorKind = "invalid_stake"
	ErrAlreadyRegistered   ErrorKind = "already_registered"
	ErrRoundFull           ErrorKind = "round_full"
	ErrNotRegistered       ErrorKind = "not_registered"
	ErrAttemptsExhausted   ErrorKind = "attempts_exhausted"
	ErrOutOfRange          ErrorKind = "out_of_range"
	ErrAlreadyDistributing ErrorKind = "already_distributing"
	ErrNoWinnersYet        ErrorKind = "no_winners_yet"
	ErrUnauthorized        ErrorKind = "unauthorized"
	ErrTransferFailed      ErrorKind = "transfer_failed"
)

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	return string(k)
}

// RuleError is a typed rejection from the round state machine. A rejected
// operation leaves all round state unchanged.
type RuleError struct {
	Kind   ErrorKind
	Detail string
	Cause  error
}

func (e *RuleError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

func (e *RuleError) Unwrap() error {
	return e.Cause
}

func ruleErr(kind ErrorKind, format string, args ...interface{}) *RuleError {
	return &RuleError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Kind extracts the ErrorKind from an error returned by a Manager operation,
// or "" if the error is not a RuleError.
func Kind(err error) ErrorKind {
	if re, ok := err.(*RuleError); ok {
		return re.Kind
	}
	return ""
}

// IsKind reports whether err is a RuleError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return Kind(err) == kind
}
