package engine

import (
	"errors"
	"fmt"
)

// ErrUnconfirmed marks an order the venue accepted but whose fill data
// was still unavailable after the confirmation poll. The position change
// may have happened; the condition is surfaced for manual follow-up and
// must never be conflated with a rejection.
var ErrUnconfirmed = errors.New("order submitted but fill unconfirmed")

// PersistError reports a trade that filled on the venue but could not be
// recorded durably. It is fatal for the cycle: a real position change
// exists that the store does not know about.
type PersistError struct {
	Trade Trade
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist trade %s %s (order %s): %v",
		e.Trade.Side, e.Trade.Symbol, e.Trade.ExternalOrderID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
