// Copyright 2025 by the psat-beacon authors, see LICENSE file

// The rfm95 package drives a HopeRF RFM95/96/98 LoRa radio over an SPI-style
// register bus. The RFM9x modules use a Semtech SX1276 radio chip, so the
// driver works with any module carrying that chip.
//
// The driver is fully poll driven: StartTx/StartRx kick off an operation and
// return immediately, and the caller advances it by polling CompleteTx or
// CompleteRx each cycle. There is no background goroutine, no interrupt pin
// and no internal sleeping outside of the fixed reset delays during New, so
// the driver fits both hosted Linux boards and single-threaded firmware
// loops. Any wait-for-completion policy, including restarting reception
// after the routine single-RX timeouts, lives in the Radio wrapper.
//
// The driver owns its bus exclusively for its lifetime: partial-register
// writes are read-modify-write sequences, and interleaved transactions from
// elsewhere would corrupt them. It is not concurrency safe. The device is
// half-duplex, so at most one of TX or RX may be in flight at a time;
// sequencing that is the caller's contract and is not runtime checked.
//
// Only LoRa mode is implemented. SF6 is not supported, see SpreadingFactor.
package rfm95

import (
	"fmt"
	"time"
)

// FifoSize is the modem's payload buffer capacity in bytes. Transmit
// payloads must not exceed it and receive buffers should be able to hold it.
const FifoSize = 255

// maxRxSymbols is the ceiling of the 10-bit receive timeout register.
const maxRxSymbols = 1023

// Reset line timing from the SX1276 datasheet: hold NRST low for at least
// 100us, then give the chip 5ms to come out of reset.
const (
	resetHoldTime   = 100 * time.Microsecond
	resetSettleTime = 5 * time.Millisecond
)

// LogPrintf is a function used by the driver to print logging info.
type LogPrintf func(format string, v ...interface{})

// Options contains the optional hooks used when initializing a Driver.
type Options struct {
	Logger LogPrintf // logging function, nil disables logging
	Trace  TraceFunc // per-transaction trace hook, nil disables tracing
}

type phase byte

const (
	phaseIdle phase = iota
	phaseTx
	phaseRx
)

// Driver is the RFM95 radio state machine. It owns the register access
// layer and the reset line, created once at startup via New and alive for
// the process lifetime; there is no teardown beyond dropping it.
type Driver struct {
	conn  conn
	reset OutPin
	phase phase
	txLen int // payload length of the in-flight transmission
	log   LogPrintf
}

// New resets the radio, verifies the silicon revision and leaves the chip in
// LoRa standby. A revision mismatch means the wrong (or no) hardware is on
// the bus; it is fatal and never retried. On any error no driver instance is
// returned, so partially initialized state is not observable.
func New(spi SPI, reset OutPin, opts Options) (*Driver, error) {
	d := &Driver{
		conn:  conn{spi: spi, trace: opts.Trace},
		reset: reset,
		log:   func(format string, v ...interface{}) {},
	}
	if opts.Logger != nil {
		d.log = opts.Logger
	}

	// Reset pulse. These are the only synchronous waits in the driver.
	if err := reset.Set(false); err != nil {
		return nil, initIO(err)
	}
	time.Sleep(resetHoldTime)
	if err := reset.Set(true); err != nil {
		return nil, initIO(err)
	}
	time.Sleep(resetSettleTime)

	rev, err := d.conn.read(regVersion)
	if err != nil {
		return nil, initIO(err)
	}
	if rev != siliconRevision {
		return nil, initBadRevision(rev)
	}
	d.log("rfm95: silicon revision %#x", rev)

	// The LoRa bit can only be flipped while asleep, so enter sleep first,
	// then park in standby with the FIFO base pointers at zero.
	setup := []struct {
		reg register
		val byte
	}{
		{regOpModeMode, modeSleep},
		{regOpMode, opModeLoRa},
		{regFifoTxBase, fifoBase},
		{regFifoRxBase, fifoBase},
		{regOpModeMode, modeStandby},
	}
	for _, s := range setup {
		if err := d.conn.write(s.reg, s.val); err != nil {
			return nil, initIO(err)
		}
	}
	return d, nil
}

// SetConfig lowers every parameter of a complete configuration through its
// raw encoding into the corresponding register field, short-circuiting on
// the first I/O error. Field order does not matter except for the frequency,
// whose three registers are written as one uninterrupted MSB-first sequence.
func (d *Driver) SetConfig(cfg *Config) error {
	if cfg == nil || !cfg.complete() {
		return fmt.Errorf("rfm95: configuration is missing parameters: %w", ErrInvalidArgument)
	}
	frf := cfg.freq.frf()
	fields := []struct {
		reg register
		val byte
	}{
		{regOpModeMode, modeStandby},
		{regBandwidth, cfg.bw.encode()},
		{regCodingRate, cfg.cr.encode()},
		{regHeaderMode, cfg.header.encode()},
		{regSpreading, cfg.sf.encode()},
		{regCrcMode, cfg.crc.encode()},
		{regPolarity, cfg.polarity.encode()},
		{regSyncWord, byte(*cfg.sync)},
		{regPreambleMsb, byte(*cfg.preamble >> 8)},
		{regPreambleLsb, byte(*cfg.preamble)},
		{regFrfMsb, byte(frf >> 16)},
		{regFrfMid, byte(frf >> 8)},
		{regFrfLsb, byte(frf)},
	}
	for _, f := range fields {
		if err := d.conn.write(f.reg, f.val); err != nil {
			return err
		}
	}
	d.log("rfm95: config sf=%d bw=%dHz cr=4/%d freq=%dHz",
		*cfg.sf, cfg.bw.Hertz(), *cfg.cr+4, *cfg.freq)
	return nil
}

// StartTx stages data in the FIFO and switches the modem into transmit
// mode. It does not wait for the transmission: poll CompleteTx. The payload
// is validated before the first bus transaction.
func (d *Driver) StartTx(data []byte) error {
	if len(data) == 0 || len(data) > FifoSize {
		return txStartBadBuffer(len(data))
	}
	if err := d.conn.write(regOpModeMode, modeStandby); err != nil {
		return txStartIO(err)
	}
	if err := d.conn.write(regFifoAddrPtr, fifoBase); err != nil {
		return txStartIO(err)
	}
	// The FIFO port auto-increments its internal pointer on every access.
	for _, b := range data {
		if err := d.conn.write(regFifo, b); err != nil {
			return txStartIO(err)
		}
	}
	if err := d.conn.write(regPayloadLength, byte(len(data))); err != nil {
		return txStartIO(err)
	}
	if err := d.conn.write(regOpModeMode, modeTx); err != nil {
		return txStartIO(err)
	}
	d.phase = phaseTx
	d.txLen = len(data)
	return nil
}

// CompleteTx polls an in-flight transmission. It returns done=false while
// the modem is still transmitting; once the TxDone flag is set it clears the
// flag and returns the number of bytes sent.
func (d *Driver) CompleteTx() (done bool, n int, err error) {
	flags, err := d.conn.read(regIrqFlags)
	if err != nil {
		return false, 0, err
	}
	if flags&irqTxDone == 0 {
		return false, 0, nil
	}
	if err := d.conn.write(regIrqFlags, 0xff); err != nil {
		return false, 0, err
	}
	d.phase = phaseIdle
	return true, d.txLen, nil
}

// symbolDuration is the time of one LoRa chirp symbol, 2^SF / BW.
func symbolDuration(sf SpreadingFactor, bw Bandwidth) time.Duration {
	return time.Duration((uint64(time.Second) << uint(sf)) / uint64(bw.Hertz()))
}

// readModulation returns the spreading factor and bandwidth currently in the
// registers. Timeout math must use these, not a cached copy: changing the
// modulation changes the usable timeout ceiling.
func (d *Driver) readModulation() (SpreadingFactor, Bandwidth, error) {
	sfRaw, err := d.conn.read(regSpreading)
	if err != nil {
		return 0, 0, err
	}
	sf, err := DecodeSpreadingFactor(sfRaw)
	if err != nil {
		return 0, 0, err
	}
	bwRaw, err := d.conn.read(regBandwidth)
	if err != nil {
		return 0, 0, err
	}
	bw, err := DecodeBandwidth(bwRaw)
	if err != nil {
		return 0, 0, err
	}
	return sf, bw, nil
}

// RxTimeoutMax returns the largest receive timeout representable at the
// currently configured modulation: 1023 symbols of 2^SF / BW each.
func (d *Driver) RxTimeoutMax() (time.Duration, error) {
	sf, bw, err := d.readModulation()
	if err != nil {
		return 0, err
	}
	return maxRxSymbols * symbolDuration(sf, bw), nil
}

// StartRx arms a single-packet reception with the given timeout and returns
// immediately: poll CompleteRx. The timeout is converted to symbols at the
// active modulation and must land in 1..1023 after rounding; zero is a
// caller error ("wait with the maximum window" is spelled
// StartRx(RxTimeoutMax())), and anything above 1023 symbols is rejected
// rather than clamped.
func (d *Driver) StartRx(timeout time.Duration) error {
	sf, bw, err := d.readModulation()
	if err != nil {
		return rxStartIO(err)
	}
	tsym := symbolDuration(sf, bw)
	symbols := int64(timeout / tsym)
	if timeout-time.Duration(symbols)*tsym >= (tsym+1)/2 {
		symbols++
	}
	if timeout <= 0 || symbols < 1 || symbols > maxRxSymbols {
		return rxStartBadTimeout(symbols)
	}
	if err := d.conn.write(regOpModeMode, modeStandby); err != nil {
		return rxStartIO(err)
	}
	if err := d.conn.write(regSymbTimeoutHi, byte(symbols>>8)); err != nil {
		return rxStartIO(err)
	}
	if err := d.conn.write(regSymbTimeoutLo, byte(symbols)); err != nil {
		return rxStartIO(err)
	}
	if err := d.conn.write(regFifoAddrPtr, fifoBase); err != nil {
		return rxStartIO(err)
	}
	if err := d.conn.write(regOpModeMode, modeRxSingle); err != nil {
		return rxStartIO(err)
	}
	d.phase = phaseRx
	return nil
}

// CompleteRx polls an in-flight reception. It returns done=false while
// nothing has arrived yet. A receive timeout surfaces as ErrTimeout and the
// driver does NOT rearm reception itself: restart-on-timeout is caller
// policy, see Radio. A CRC failure (with CRC checking enabled) discards the
// frame and surfaces as ErrInvalidMessage. On success the payload is copied
// into buf, which must be able to hold the reported length; a short buf is
// caller misuse of a fixed-size buffer and reported as ErrInvalidArgument.
func (d *Driver) CompleteRx(buf []byte) (done bool, n int, err error) {
	flags, err := d.conn.read(regIrqFlags)
	if err != nil {
		return false, 0, rxCompleteIO(err)
	}
	if flags&irqRxTimeout != 0 {
		if err := d.conn.write(regIrqFlags, 0xff); err != nil {
			return false, 0, rxCompleteIO(err)
		}
		d.phase = phaseIdle
		return false, 0, rxCompleteTimeout()
	}
	if flags&irqCrcErr != 0 {
		crcRaw, err := d.conn.read(regCrcMode)
		if err != nil {
			return false, 0, rxCompleteIO(err)
		}
		if CrcMode(crcRaw) == CrcEnabled {
			if err := d.conn.write(regIrqFlags, 0xff); err != nil {
				return false, 0, rxCompleteIO(err)
			}
			d.phase = phaseIdle
			return false, 0, rxCompleteCrc()
		}
	}
	if flags&irqRxDone == 0 {
		return false, 0, nil
	}

	length, err := d.conn.read(regRxNbBytes)
	if err != nil {
		return false, 0, rxCompleteIO(err)
	}
	if int(length) > len(buf) {
		return false, 0, fmt.Errorf("rfm95: %d-byte packet exceeds the %d-byte buffer: %w",
			length, len(buf), ErrInvalidArgument)
	}
	cur, err := d.conn.read(regFifoRxCurrent)
	if err != nil {
		return false, 0, rxCompleteIO(err)
	}
	if err := d.conn.write(regFifoAddrPtr, cur); err != nil {
		return false, 0, rxCompleteIO(err)
	}
	for i := 0; i < int(length); i++ {
		b, err := d.conn.read(regFifo)
		if err != nil {
			return false, 0, rxCompleteIO(err)
		}
		buf[i] = b
	}
	if err := d.conn.write(regIrqFlags, 0xff); err != nil {
		return false, 0, rxCompleteIO(err)
	}
	d.phase = phaseIdle
	return true, int(length), nil
}
