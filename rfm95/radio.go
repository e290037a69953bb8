// Copyright 2025 by the psat-beacon authors, see LICENSE file

package rfm95

import "errors"

// ErrWouldBlock reports that an in-flight operation has not completed yet
// and the caller should poll again next cycle.
var ErrWouldBlock = errors.New("rfm95: operation in flight")

// Radio layers the beacon's polling policy on top of the Driver. It tracks
// whether a transmission or reception is in flight so each operation is
// started exactly once, and it treats the radio's single-RX timeouts as the
// routine steady state of duty-cycled listening: on a timeout it recomputes
// the maximum window and rearms reception instead of surfacing the timeout.
// CRC failures are surfaced; whether to resume listening after one is the
// caller's decision.
type Radio struct {
	*Driver
	txIdle bool
	rxIdle bool
}

// NewRadio wraps an initialized driver.
func NewRadio(d *Driver) *Radio {
	return &Radio{Driver: d, txIdle: true, rxIdle: true}
}

// Transmit sends data, one poll at a time. The first call copies data into
// the radio's FIFO; later changes to data have no effect until a call
// returns the byte count and the cycle starts over. While the transmission
// is in flight Transmit returns ErrWouldBlock.
func (r *Radio) Transmit(data []byte) (int, error) {
	if r.txIdle {
		if err := r.StartTx(data); err != nil {
			return 0, err
		}
		r.txIdle = false
	}
	done, n, err := r.CompleteTx()
	if err != nil {
		r.txIdle = true
		return 0, err
	}
	if !done {
		return 0, ErrWouldBlock
	}
	r.txIdle = true
	return n, nil
}

// Receive listens for one packet, one poll at a time, rearming reception
// with the maximum timeout window whenever the radio reports a receive
// timeout. It returns ErrWouldBlock until a packet lands in buf.
func (r *Radio) Receive(buf []byte) (int, error) {
	if r.rxIdle {
		if err := r.listen(); err != nil {
			return 0, err
		}
	}
	done, n, err := r.CompleteRx(buf)
	switch {
	case errors.Is(err, ErrTimeout):
		if err := r.listen(); err != nil {
			return 0, err
		}
		return 0, ErrWouldBlock
	case err != nil:
		r.rxIdle = true
		return 0, err
	case !done:
		return 0, ErrWouldBlock
	}
	r.rxIdle = true
	return n, nil
}

func (r *Radio) listen() error {
	timeout, err := r.RxTimeoutMax()
	if err != nil {
		return err
	}
	if err := r.StartRx(timeout); err != nil {
		return err
	}
	r.rxIdle = false
	return nil
}
