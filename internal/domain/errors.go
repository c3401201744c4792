package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrReactionNotFound = errors.New("reaction not found")
	ErrCallNotFound     = errors.New("call not found")
	ErrNotInCall        = errors.New("provider is not in the call")
	ErrNotParticipant   = errors.New("provider is not a participant of the thread")
	ErrReactionExists   = errors.New("reaction already exists")
	ErrTooManyReactions = errors.New("max unique reactions reached")
	ErrInvalidReaction  = errors.New("invalid reaction")
	ErrForbidden        = errors.New("forbidden")
	ErrUnknownProvider  = errors.New("unknown provider type")
)

// FeatureDisabledError - фича выключена; возвращается до любой мутации.
type FeatureDisabledError struct {
	Feature string
}

func (e *FeatureDisabledError) Error() string {
	return fmt.Sprintf("%s are currently disabled", e.Feature)
}

// TransactionConflictError - транзакция не прошла после всех попыток.
type TransactionConflictError struct {
	Attempts int
	Err      error
}

func (e *TransactionConflictError) Error() string {
	return fmt.Sprintf("transaction conflict after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransactionConflictError) Unwrap() error { return e.Err }

func IsFeatureDisabled(err error) bool {
	var fe *FeatureDisabledError
	return errors.As(err, &fe)
}
