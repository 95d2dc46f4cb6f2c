package types

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ═══════════════════════════════════════════════════════════════
// ERROR KINDS
// ═══════════════════════════════════════════════════════════════

// Sentinel kinds. Every typed error below reports one of these through errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSubmission          = errors.New("submission failed")
	ErrTransactionFailed   = errors.New("transaction failed")
	ErrEncoding            = errors.New("encoding failed")
	ErrAlreadySettled      = errors.New("market already settled")
)

// ValidationError is raised locally, before any network round trip.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// invalidf builds a *ValidationError for a named field.
func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidPriceError reports a price outside the range allowed for its role.
type InvalidPriceError struct {
	Field string
	Price int
	Role  OrderRole
}

func (e *InvalidPriceError) Error() string {
	field := e.Field
	if field == "" {
		field = "price"
	}
	switch e.Role {
	case RoleBuy:
		return fmt.Sprintf("%s must be between -99 and -1 for a buy order, got %d", field, e.Price)
	case RoleSell:
		return fmt.Sprintf("%s must be between 1 and 99 for a sell order, got %d", field, e.Price)
	default:
		return fmt.Sprintf("%s %d is not valid", field, e.Price)
	}
}

func (e *InvalidPriceError) Is(target error) bool { return target == ErrValidation }

// EncodingError reports a field that does not fit its fixed-width wire slot.
type EncodingError struct {
	Field string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to encode %s: %v", e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error        { return e.Err }
func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

// NotFoundError reports an absent market, distribution or attestation.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// OrderNotFoundError reports that no order rests at the exact price level.
type OrderNotFoundError struct {
	QueryID int
	Outcome bool
	Price   int
	Detail  string
}

func (e *OrderNotFoundError) Error() string {
	msg := fmt.Sprintf("no order at price %d for query_id=%d outcome=%s", e.Price, e.QueryID, OutcomeName(e.Outcome))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *OrderNotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientBalanceError is surfaced when the node rejects a holding or collateral check.
type InsufficientBalanceError struct {
	Action string
	Detail string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: insufficient balance: %s", e.Action, e.Detail)
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrInsufficientBalance }

// SubmissionError wraps a transport or signing failure. The operation was never accepted.
type SubmissionError struct {
	Action string
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to submit %s: %v", e.Action, e.Err)
}

func (e *SubmissionError) Unwrap() error        { return e.Err }
func (e *SubmissionError) Is(target error) bool { return target == ErrSubmission }

// TransactionFailedError is reported by a confirmation wait when the transaction
// was accepted but executed with a non-OK result.
type TransactionFailedError struct {
	TxHash string
	Height int64
	Code   uint32
	Log    string
	// Kind is the classified cause (ErrInsufficientBalance, ErrNotFound, ...) or nil.
	Kind error
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction %s failed with code %d: %s", e.TxHash, e.Code, e.Log)
}

func (e *TransactionFailedError) Is(target error) bool {
	return target == ErrTransactionFailed || (e.Kind != nil && target == e.Kind)
}

// ═══════════════════════════════════════════════════════════════
// REMOTE MESSAGE CLASSIFICATION
// ═══════════════════════════════════════════════════════════════

var remoteKinds = []struct {
	needle string
	kind   error
}{
	{"insufficient", ErrInsufficientBalance},
	{"not enough", ErrInsufficientBalance},
	{"already settled", ErrAlreadySettled},
	{"order not found", ErrNotFound},
	{"no order", ErrNotFound},
	{"market not found", ErrNotFound},
	{"does not exist", ErrNotFound},
}

// ClassifyRemoteMessage maps a node error message to an error kind, or nil when
// the message does not match a known failure.
func ClassifyRemoteMessage(msg string) error {
	lower := strings.ToLower(msg)
	for _, rk := range remoteKinds {
		if strings.Contains(lower, rk.needle) {
			return rk.kind
		}
	}
	return nil
}

// ClassifyRemoteError turns a failed submission of action into a typed error.
// Unrecognized failures become a *SubmissionError.
func ClassifyRemoteError(action string, err error) error {
	if err == nil {
		return nil
	}
	switch kind := ClassifyRemoteMessage(err.Error()); kind {
	case ErrInsufficientBalance:
		return &InsufficientBalanceError{Action: action, Detail: err.Error()}
	case nil:
		return &SubmissionError{Action: action, Err: err}
	default:
		return errors.Wrapf(kind, "%s rejected: %v", action, err)
	}
}
