// Copyright 2025 by the psat-beacon authors, see LICENSE file

package beacon

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var hostOnce sync.Once
var hostErr error

// initHost initializes periph's host drivers once. Every Open* entry point
// funnels through here so callers don't have to.
func initHost() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	return hostErr
}

// SPIConn is a dedicated SPI device connection at the fixed 4MHz mode-0
// configuration the radio expects.
type SPIConn struct {
	port spi.PortCloser
	conn spi.Conn
}

// OpenSPI opens the named SPI port ("" for the first available) and
// configures it for the radio.
func OpenSPI(name string) (*SPIConn, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("beacon: host init: %w", err)
	}
	port, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("beacon: cannot open SPI port %q: %w", name, err)
	}
	conn, err := port.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("beacon: cannot configure SPI port %q: %w", name, err)
	}
	return &SPIConn{port: port, conn: conn}, nil
}

// Tx performs one full-duplex SPI transaction.
func (s *SPIConn) Tx(w, r []byte) error { return s.conn.Tx(w, r) }

func (s *SPIConn) Close() error { return s.port.Close() }

// Pin is a GPIO output, used for the radio reset line.
type Pin struct {
	pin gpio.PinIO
}

// OpenPin looks up a GPIO pin by name (e.g. "GPIO25") and configures it as
// an output driven high.
func OpenPin(name string) (*Pin, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("beacon: host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("beacon: no GPIO pin named %q", name)
	}
	if err := p.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("beacon: cannot drive pin %s: %w", name, err)
	}
	return &Pin{pin: p}, nil
}

// Set drives the pin high or low.
func (p *Pin) Set(high bool) error { return p.pin.Out(gpio.Level(high)) }

// MuxedSPI shares one SPI port between two devices whose chip selects hang
// off a demux steered by an extra GPIO pin (for boards that route a second
// radio onto the same bus). Each transaction sets the select pin, runs, and
// holds a mutex so the two devices never interleave.
type MuxedSPI struct {
	mu  *sync.Mutex
	spi *SPIConn
	sel gpio.PinIO
	lvl gpio.Level
}

// NewMuxedSPI returns two SPI transactors over one port: the first selects
// its device with the pin low, the second with the pin high.
func NewMuxedSPI(conn *SPIConn, selPin string) (*MuxedSPI, *MuxedSPI, error) {
	p := gpioreg.ByName(selPin)
	if p == nil {
		return nil, nil, fmt.Errorf("beacon: no GPIO pin named %q", selPin)
	}
	mu := new(sync.Mutex)
	return &MuxedSPI{mu, conn, p, gpio.Low}, &MuxedSPI{mu, conn, p, gpio.High}, nil
}

// Tx steers the demux to this device and runs one transaction.
func (m *MuxedSPI) Tx(w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.sel.Out(m.lvl); err != nil {
		return err
	}
	return m.spi.Tx(w, r)
}
