// Copyright 2025 by the psat-beacon authors, see LICENSE file

package rfm95

import "fmt"

// The radio parameter value types. Each is a validated wrapper around a
// small integer with a lossless conversion to and from the modem's raw
// encoding: encode(v) is the register field value, and the DecodeX functions
// reject any raw byte that is not one of the defined codes instead of
// clamping it.

// SpreadingFactor selects the number of chirps per symbol, 2^SF. Higher
// factors trade bitrate for range. SF6 exists in the silicon but needs
// special-case handling (implicit header only, different detector settings)
// and is not supported here.
type SpreadingFactor byte

const (
	SF7  SpreadingFactor = 7  // 128 chirps per symbol
	SF8  SpreadingFactor = 8  // 256 chirps per symbol
	SF9  SpreadingFactor = 9  // 512 chirps per symbol
	SF10 SpreadingFactor = 10 // 1024 chirps per symbol
	SF11 SpreadingFactor = 11 // 2048 chirps per symbol
	SF12 SpreadingFactor = 12 // 4096 chirps per symbol
)

// DecodeSpreadingFactor converts the raw register field back into a
// SpreadingFactor. The raw encoding equals the factor itself.
func DecodeSpreadingFactor(raw byte) (SpreadingFactor, error) {
	if raw < byte(SF7) || raw > byte(SF12) {
		return 0, fmt.Errorf("no spreading factor with code %#x: %w", raw, ErrInvalidArgument)
	}
	return SpreadingFactor(raw), nil
}

func (sf SpreadingFactor) encode() byte { return byte(sf) }

// Bandwidth is the LoRa channel bandwidth. The raw encoding is an opaque
// 4-bit code that is not derivable from the kHz value; both directions go
// through explicit tables.
type Bandwidth byte

const (
	BW7_8   Bandwidth = 0x0 // 7.8 kHz
	BW10_4  Bandwidth = 0x1 // 10.4 kHz
	BW15_6  Bandwidth = 0x2 // 15.6 kHz
	BW20_8  Bandwidth = 0x3 // 20.8 kHz
	BW31_25 Bandwidth = 0x4 // 31.25 kHz
	BW41_7  Bandwidth = 0x5 // 41.7 kHz
	BW62_5  Bandwidth = 0x6 // 62.5 kHz
	BW125   Bandwidth = 0x7 // 125 kHz
	BW250   Bandwidth = 0x8 // 250 kHz
	BW500   Bandwidth = 0x9 // 500 kHz
)

var bandwidthHz = map[Bandwidth]uint32{
	BW7_8:   7800,
	BW10_4:  10400,
	BW15_6:  15600,
	BW20_8:  20800,
	BW31_25: 31250,
	BW41_7:  41700,
	BW62_5:  62500,
	BW125:   125000,
	BW250:   250000,
	BW500:   500000,
}

// DecodeBandwidth converts the raw register field back into a Bandwidth.
func DecodeBandwidth(raw byte) (Bandwidth, error) {
	if _, ok := bandwidthHz[Bandwidth(raw)]; !ok {
		return 0, fmt.Errorf("no bandwidth with code %#x: %w", raw, ErrInvalidArgument)
	}
	return Bandwidth(raw), nil
}

func (bw Bandwidth) encode() byte { return byte(bw) }

// Hertz returns the bandwidth in Hz.
func (bw Bandwidth) Hertz() uint32 { return bandwidthHz[bw] }

// CodingRate is the forward error correction overhead. The raw encoding is
// the difference to the overhead divisor (4/5 => 1, 4/8 => 4).
type CodingRate byte

const (
	CR4_5 CodingRate = 1 // 1.25x overhead
	CR4_6 CodingRate = 2 // 1.5x overhead
	CR4_7 CodingRate = 3 // 1.75x overhead
	CR4_8 CodingRate = 4 // 2x overhead
)

// DecodeCodingRate converts the raw register field back into a CodingRate.
func DecodeCodingRate(raw byte) (CodingRate, error) {
	if raw < byte(CR4_5) || raw > byte(CR4_8) {
		return 0, fmt.Errorf("no coding rate with code %#x: %w", raw, ErrInvalidArgument)
	}
	return CodingRate(raw), nil
}

func (cr CodingRate) encode() byte { return byte(cr) }

// Polarity is the IQ polarity: normal for uplinks, inverted for downlinks.
type Polarity byte

const (
	PolarityNormal   Polarity = 0
	PolarityInverted Polarity = 1
)

// DecodePolarity converts the raw register field back into a Polarity.
func DecodePolarity(raw byte) (Polarity, error) {
	if raw > 1 {
		return 0, fmt.Errorf("no polarity with code %#x: %w", raw, ErrInvalidArgument)
	}
	return Polarity(raw), nil
}

func (p Polarity) encode() byte { return byte(p) }

// HeaderMode selects whether each frame carries an explicit LoRa header.
type HeaderMode byte

const (
	HeaderExplicit HeaderMode = 0
	HeaderImplicit HeaderMode = 1
)

// DecodeHeaderMode converts the raw register field back into a HeaderMode.
func DecodeHeaderMode(raw byte) (HeaderMode, error) {
	if raw > 1 {
		return 0, fmt.Errorf("no header mode with code %#x: %w", raw, ErrInvalidArgument)
	}
	return HeaderMode(raw), nil
}

func (h HeaderMode) encode() byte { return byte(h) }

// CrcMode enables the modem's payload CRC check.
type CrcMode byte

const (
	CrcDisabled CrcMode = 0
	CrcEnabled  CrcMode = 1
)

// DecodeCrcMode converts the raw register field back into a CrcMode.
func DecodeCrcMode(raw byte) (CrcMode, error) {
	if raw > 1 {
		return 0, fmt.Errorf("no CRC mode with code %#x: %w", raw, ErrInvalidArgument)
	}
	return CrcMode(raw), nil
}

func (c CrcMode) encode() byte { return byte(c) }

// SyncWord distinguishes networks sharing a channel.
type SyncWord byte

const (
	SyncWordPublic  SyncWord = 0x34 // LoRaWAN public networks
	SyncWordPrivate SyncWord = 0x12 // private networks, the chip default
)

// PreambleLength is the preamble length in symbols.
type PreambleLength uint16

// PreambleLength8 is the 8-symbol preamble used by LoRaWAN.
const PreambleLength8 PreambleLength = 8

// Frequency is the center frequency in Hz.
type Frequency uint32

const (
	Freq868_1 Frequency = 868_100_000 // common LoRaWAN default (EU)
	Freq868_3 Frequency = 868_300_000 // common LoRaWAN default (EU)
	Freq868_5 Frequency = 868_500_000 // common LoRaWAN default (EU)
	Freq869_5 Frequency = 869_500_000 // 10% duty cycle in some areas
	Freq915_0 Frequency = 915_000_000 // US ISM band
)

// frf returns the 24-bit frequency word. Steps are 32MHz / 2^19 =
// 61.03515625 Hz, so the write quantizes; Frequency itself stays exact.
func (f Frequency) frf() uint32 {
	return uint32((uint64(f) << 19) / 32_000_000)
}

// Config accumulates a full radio parameter set. The zero value is empty;
// each setter validates by construction (the parameter types are closed) and
// returns the Config for chaining. A Config is complete once every slot is
// set, and only complete configurations can be applied, see
// Driver.SetConfig.
type Config struct {
	sf       *SpreadingFactor
	bw       *Bandwidth
	cr       *CodingRate
	polarity *Polarity
	header   *HeaderMode
	crc      *CrcMode
	sync     *SyncWord
	preamble *PreambleLength
	freq     *Frequency
}

// NewConfig returns an empty configuration accumulator.
func NewConfig() *Config { return &Config{} }

func (c *Config) SetSpreadingFactor(sf SpreadingFactor) *Config { c.sf = &sf; return c }
func (c *Config) SetBandwidth(bw Bandwidth) *Config             { c.bw = &bw; return c }
func (c *Config) SetCodingRate(cr CodingRate) *Config           { c.cr = &cr; return c }
func (c *Config) SetPolarity(p Polarity) *Config                { c.polarity = &p; return c }
func (c *Config) SetHeaderMode(h HeaderMode) *Config            { c.header = &h; return c }
func (c *Config) SetCrcMode(m CrcMode) *Config                  { c.crc = &m; return c }
func (c *Config) SetSyncWord(w SyncWord) *Config                { c.sync = &w; return c }
func (c *Config) SetPreambleLength(l PreambleLength) *Config    { c.preamble = &l; return c }
func (c *Config) SetFrequency(f Frequency) *Config              { c.freq = &f; return c }

func (c *Config) complete() bool {
	return c.sf != nil && c.bw != nil && c.cr != nil && c.polarity != nil &&
		c.header != nil && c.crc != nil && c.sync != nil && c.preamble != nil &&
		c.freq != nil
}
