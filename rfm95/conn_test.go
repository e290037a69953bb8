// Copyright 2025 by the psat-beacon authors, see LICENSE file

package rfm95

import (
	"errors"
	"testing"
)

// simModem emulates the RFM95's register file behind the SPI byte-exchange
// primitive: 2-byte transactions, write-1-to-clear IRQ flags, and a FIFO
// port that auto-increments the address pointer on every access.
type simModem struct {
	regs [0x80]byte
	fifo [256]byte
	txns int
	fail error
}

func newSimModem() *simModem {
	m := &simModem{}
	m.regs[regVersion.addr] = siliconRevision
	return m
}

func (m *simModem) Tx(w, r []byte) error {
	if m.fail != nil {
		return m.fail
	}
	if len(w) != 2 || len(r) != 2 {
		panic("simModem: transactions are two bytes")
	}
	m.txns++
	addr := w[0] & 0x7f
	if w[0]&0x80 != 0 {
		if addr != regFifo.addr {
			r[1] = m.regs[addr]
		}
		m.poke(addr, w[1])
	} else {
		r[1] = m.peek(addr)
	}
	return nil
}

func (m *simModem) poke(addr, v byte) {
	switch addr {
	case regFifo.addr:
		m.fifo[m.regs[regFifoAddrPtr.addr]] = v
		m.regs[regFifoAddrPtr.addr]++
	case regIrqFlags.addr:
		m.regs[addr] &^= v
	default:
		m.regs[addr] = v
	}
}

func (m *simModem) peek(addr byte) byte {
	if addr == regFifo.addr {
		v := m.fifo[m.regs[regFifoAddrPtr.addr]]
		m.regs[regFifoAddrPtr.addr]++
		return v
	}
	return m.regs[addr]
}

func TestWriteFullMaskOneTransaction(t *testing.T) {
	m := newSimModem()
	c := conn{spi: m}
	if err := c.write(regSyncWord, 0x12); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if m.txns != 1 {
		t.Errorf("full-mask write took %d transactions, expected 1", m.txns)
	}
	if m.regs[regSyncWord.addr] != 0x12 {
		t.Errorf("register holds %#x, expected 0x12", m.regs[regSyncWord.addr])
	}
}

func TestWritePartialMaskReadModifyWrite(t *testing.T) {
	m := newSimModem()
	m.regs[regCodingRate.addr] = 0xff
	c := conn{spi: m}
	if err := c.write(regCodingRate, CR4_5.encode()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if m.txns != 2 {
		t.Errorf("partial-mask write took %d transactions, expected 2 (read then write)", m.txns)
	}
	// bits outside the 0x0e mask must keep their previous value
	if got := m.regs[regCodingRate.addr]; got != 0xf3 {
		t.Errorf("register holds %#x, expected 0xf3", got)
	}
}

func TestReadMasksAndShifts(t *testing.T) {
	m := newSimModem()
	m.regs[0x1e] = 0xa7 // SF10 | CRC on | timeout MSB 0x3
	c := conn{spi: m}

	for _, tc := range []struct {
		name string
		reg  register
		want byte
	}{
		{"spreading factor", regSpreading, 0x0a},
		{"crc mode", regCrcMode, 0x01},
		{"symbol timeout msb", regSymbTimeoutHi, 0x03},
	} {
		got, err := c.read(tc.reg)
		if err != nil {
			t.Fatalf("%s: read failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %#x, expected %#x", tc.name, got, tc.want)
		}
	}
}

func TestTraceHook(t *testing.T) {
	type txn struct{ op, addr, mosi, miso byte }
	var seen []txn
	m := newSimModem()
	m.regs[regVersion.addr] = 0x12
	c := conn{spi: m, trace: func(op, addr, mosi, miso byte) {
		seen = append(seen, txn{op, addr, mosi, miso})
	}}

	if _, err := c.read(regVersion); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if err := c.write(regSyncWord, 0x34); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := []txn{
		{opRead, regVersion.addr, 0x00, 0x12},
		{opWrite, regSyncWord.addr, 0x34, 0x00},
	}
	if len(seen) != len(want) {
		t.Fatalf("traced %d transactions, expected %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transaction %d traced as %+v, expected %+v", i, seen[i], want[i])
		}
	}
}

func TestBusFaultSurfacesAsIOError(t *testing.T) {
	m := newSimModem()
	m.fail = errors.New("wires crossed")
	c := conn{spi: m}

	if _, err := c.read(regVersion); !errors.Is(err, ErrIO) {
		t.Errorf("read error = %v, expected ErrIO", err)
	}
	if err := c.write(regSyncWord, 0x12); !errors.Is(err, ErrIO) {
		t.Errorf("write error = %v, expected ErrIO", err)
	}
}
