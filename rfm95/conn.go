// Copyright 2025 by the psat-beacon authors, see LICENSE file

package rfm95

// SPI is the byte-exchange primitive the driver requires from the bus. Tx
// writes the bytes of w while reading the same number of bytes into r.
// Implementations are responsible for chip select; a chip-select fault and a
// bus fault are indistinguishable to the driver, both surface as ErrIO.
type SPI interface {
	Tx(w, r []byte) error
}

// OutPin is a single-bit output control, used for the radio's reset line.
type OutPin interface {
	Set(high bool) error
}

// TraceFunc mirrors a register transaction to an external observer. It is
// invoked after every transaction with the operation bit, the register
// address, the byte that went out and the byte that came back. Tracing is
// diagnostic only and must never affect the driver's control flow.
type TraceFunc func(op, addr, mosi, miso byte)

const (
	opRead  byte = 0x00
	opWrite byte = 0x80
)

// conn performs single-register transactions against the modem. Every
// transaction is two bytes on the wire: opcode|address followed by the
// payload (a dummy 0x00 for reads). The previous register value comes back
// in the second byte.
type conn struct {
	spi   SPI
	trace TraceFunc
}

// read returns the field described by reg, masked and shifted into place.
func (c *conn) read(reg register) (byte, error) {
	v, err := c.transact(opRead, reg.addr, 0x00)
	if err != nil {
		return 0, err
	}
	return (v & reg.mask) >> reg.offset, nil
}

// write stores value into the field described by reg. A full-byte mask is
// written in a single transaction; a partial mask takes a read-modify-write
// pair, preserving the register's out-of-mask bits. The RMW sequence is not
// atomic: the driver must be the sole owner of the bus.
func (c *conn) write(reg register, value byte) error {
	if reg.mask == 0xff {
		_, err := c.transact(opWrite, reg.addr, value)
		return err
	}
	old, err := c.transact(opRead, reg.addr, 0x00)
	if err != nil {
		return err
	}
	_, err = c.transact(opWrite, reg.addr, (old&^reg.mask)|(value<<reg.offset))
	return err
}

func (c *conn) transact(op, addr, payload byte) (byte, error) {
	addr &= 0x7f
	w := [2]byte{op | addr, payload}
	var r [2]byte
	if err := c.spi.Tx(w[:], r[:]); err != nil {
		return 0, ioFailure(err)
	}
	if c.trace != nil {
		c.trace(op, addr, payload, r[1])
	}
	return r[1], nil
}
