package exchange

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPrecision marks a rejection caused solely by the order size carrying
// more decimal places than the venue accepts. These are the only
// rejections the execution protocol retries.
var ErrPrecision = errors.New("size precision exceeds venue limit")

// RejectionError is a venue-side order rejection. When the rejection was
// for excess precision, it wraps ErrPrecision so errors.Is works.
type RejectionError struct {
	Symbol string
	Reason string
	cause  error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("order rejected for %s: %s", e.Symbol, e.Reason)
}

func (e *RejectionError) Unwrap() error { return e.cause }

// Reject builds a terminal rejection.
func Reject(symbol, reason string) *RejectionError {
	return &RejectionError{Symbol: symbol, Reason: reason}
}

// RejectPrecision builds a retryable precision rejection.
func RejectPrecision(symbol, reason string) *RejectionError {
	return &RejectionError{Symbol: symbol, Reason: reason, cause: ErrPrecision}
}

// ClassifyRejection maps a venue rejection message onto the typed error
// model. Venues phrase precision complaints inconsistently, so matching
// is substring-based.
func ClassifyRejection(symbol, message string) *RejectionError {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "precision") || strings.Contains(lower, "too many decimal") {
		return RejectPrecision(symbol, message)
	}
	return Reject(symbol, message)
}
