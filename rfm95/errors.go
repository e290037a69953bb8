// Copyright 2025 by the psat-beacon authors, see LICENSE file

package rfm95

import (
	"errors"
	"fmt"
)

// The four leaf error kinds. Every error returned by this package wraps
// exactly one of them, so callers can classify any failure with errors.Is
// regardless of which operation produced it.
var (
	// ErrIO is a bus or GPIO failure. The driver never retries these;
	// retry policy, if any, belongs to the caller.
	ErrIO = errors.New("rfm95: i/o failure")
	// ErrTimeout is a protocol receive timeout. Routine during duty-cycled
	// listening, see Radio.
	ErrTimeout = errors.New("rfm95: receive timeout")
	// ErrInvalidMessage is a CRC failure or malformed frame.
	ErrInvalidMessage = errors.New("rfm95: invalid message")
	// ErrInvalidArgument is a caller-supplied out-of-domain value. These are
	// deterministic and discovered before any side effect: seeing one in
	// production is a programming bug, not an environmental fault.
	ErrInvalidArgument = errors.New("rfm95: invalid argument")
)

func ioFailure(cause error) error {
	return fmt.Errorf("%w: %v", ErrIO, cause)
}

// Each operation exposes a union of exactly the leaf kinds it can produce.
// The unions are populated only through the per-leaf constructors below, so
// no operation can smuggle in a kind outside its declared union. Unwrap
// makes the widening lossless: errors.Is against a leaf always works.

// InitError is anything New can fail with: an I/O fault, or an unsupported
// silicon revision (wrong hardware, reported as an invalid-argument kind).
type InitError struct{ err error }

func (e *InitError) Error() string { return "init: " + e.err.Error() }
func (e *InitError) Unwrap() error { return e.err }

func initIO(cause error) *InitError {
	if !errors.Is(cause, ErrIO) {
		cause = ioFailure(cause)
	}
	return &InitError{cause}
}

func initBadRevision(rev byte) *InitError {
	return &InitError{fmt.Errorf("unsupported silicon revision %#x (want %#x): %w",
		rev, siliconRevision, ErrInvalidArgument)}
}

// TxStartError is anything StartTx can fail with: an I/O fault, or a payload
// that does not fit the FIFO.
type TxStartError struct{ err error }

func (e *TxStartError) Error() string { return "tx start: " + e.err.Error() }
func (e *TxStartError) Unwrap() error { return e.err }

func txStartIO(cause error) *TxStartError { return &TxStartError{cause} }

func txStartBadBuffer(n int) *TxStartError {
	return &TxStartError{fmt.Errorf("payload of %d bytes does not fit the %d-byte FIFO: %w",
		n, FifoSize, ErrInvalidArgument)}
}

// RxStartError is anything StartRx can fail with: an I/O fault, or a timeout
// outside the representable symbol-count range.
type RxStartError struct{ err error }

func (e *RxStartError) Error() string { return "rx start: " + e.err.Error() }
func (e *RxStartError) Unwrap() error { return e.err }

func rxStartIO(cause error) *RxStartError { return &RxStartError{cause} }

func rxStartBadTimeout(symbols int64) *RxStartError {
	return &RxStartError{fmt.Errorf("timeout of %d symbols is outside 1..%d: %w",
		symbols, maxRxSymbols, ErrInvalidArgument)}
}

// RxCompleteError is anything CompleteRx can fail with once a reception is
// in flight: an I/O fault, the radio's receive timeout, or a CRC failure.
type RxCompleteError struct{ err error }

func (e *RxCompleteError) Error() string { return "rx: " + e.err.Error() }
func (e *RxCompleteError) Unwrap() error { return e.err }

func rxCompleteIO(cause error) *RxCompleteError { return &RxCompleteError{cause} }

func rxCompleteTimeout() *RxCompleteError {
	return &RxCompleteError{fmt.Errorf("no packet within the timeout window: %w", ErrTimeout)}
}

func rxCompleteCrc() *RxCompleteError {
	return &RxCompleteError{fmt.Errorf("payload CRC check failed: %w", ErrInvalidMessage)}
}
