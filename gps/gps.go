// Copyright 2025 by the psat-beacon authors, see LICENSE file

// The gps package reads NMEA GGA sentences from a u-blox style GPS receiver
// on a serial port and turns them into fixed-point position fixes. Only the
// GGA sentence is parsed: it carries everything the beacon transmits (time,
// position, fix quality, satellite count, altitude). Coordinates are kept as
// integer degrees plus a decimal fraction so the beacon never touches
// floating point on the hot path.
package gps

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// NMEA sentences are at most 82 characters including the framing.
const sentenceMaxLen = 82

// ErrNoFix reports a well-formed GGA sentence whose fix quality is "no fix".
// Routine while the receiver is acquiring satellites.
var ErrNoFix = errors.New("gps: no fix")

// FixType is the GGA fix quality indicator.
type FixType int

const (
	FixNone FixType = iota
	FixGPS
	FixDifferential
)

func (f FixType) String() string {
	switch f {
	case FixNone:
		return "none"
	case FixGPS:
		return "gps"
	case FixDifferential:
		return "dgps"
	}
	return fmt.Sprintf("fix(%d)", int(f))
}

// Degrees is a latitude or longitude as whole degrees plus a decimal
// fraction scaled by 1e5 (about 1.1m of resolution). Southern and western
// hemispheres have negative Deg.
type Degrees struct {
	Deg  int16
	Frac uint32
}

func (d Degrees) String() string {
	return fmt.Sprintf("%d.%05d°", d.Deg, d.Frac)
}

// Altitude is height above mean sea level in centimetres, good to 42949km.
type Altitude uint32

func (a Altitude) Metres() uint32      { return uint32(a) / 100 }
func (a Altitude) Centimetres() uint32 { return uint32(a) }

func (a Altitude) String() string {
	return fmt.Sprintf("%d.%02dm", a.Metres(), uint32(a)%100)
}

// UTCTime is the GGA timestamp, a time of day.
type UTCTime struct {
	Hours   uint8
	Minutes uint8
	Seconds uint8
	Millis  uint16
}

func (t UTCTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d UTC", t.Hours, t.Minutes, t.Seconds, t.Millis)
}

// SecondsOfDay returns the timestamp as whole seconds since midnight.
func (t UTCTime) SecondsOfDay() uint32 {
	return uint32(t.Hours)*3600 + uint32(t.Minutes)*60 + uint32(t.Seconds)
}

// Fix is one decoded GGA sentence.
type Fix struct {
	Time       UTCTime
	Latitude   Degrees
	Longitude  Degrees
	Quality    FixType
	Satellites uint8
	Altitude   Altitude
}

// ParseGGA decodes a GGA sentence (with or without the trailing checksum and
// line ending). It returns ErrNoFix for sentences reporting no fix; all
// other failures describe what was malformed.
func ParseGGA(sentence string) (*Fix, error) {
	sentence = strings.TrimRight(sentence, "\r\n")
	if i := strings.IndexByte(sentence, '*'); i >= 0 {
		sentence = sentence[:i]
	}
	fields := strings.Split(sentence, ",")
	if len(fields) != 15 {
		return nil, fmt.Errorf("gps: GGA sentence has %d fields, expected 15", len(fields))
	}
	if len(fields[0]) != 5 || fields[0][2:] != "GGA" {
		return nil, fmt.Errorf("gps: not a GGA sentence: %q", fields[0])
	}

	quality, err := parseFixType(fields[6])
	if err != nil {
		return nil, err
	}
	if quality == FixNone {
		return nil, ErrNoFix
	}

	tm, err := parseUTCTime(fields[1])
	if err != nil {
		return nil, err
	}
	lat, err := parseDegrees(fields[2], fields[3])
	if err != nil {
		return nil, fmt.Errorf("gps: latitude: %w", err)
	}
	lon, err := parseDegrees(fields[4], fields[5])
	if err != nil {
		return nil, fmt.Errorf("gps: longitude: %w", err)
	}
	sats, err := strconv.ParseUint(fields[7], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("gps: satellite count %q: %v", fields[7], err)
	}
	alt, err := parseAltitude(fields[9])
	if err != nil {
		return nil, err
	}

	return &Fix{
		Time:       tm,
		Latitude:   lat,
		Longitude:  lon,
		Quality:    quality,
		Satellites: uint8(sats),
		Altitude:   alt,
	}, nil
}

func parseFixType(field string) (FixType, error) {
	switch field {
	case "0":
		return FixNone, nil
	case "1":
		return FixGPS, nil
	case "2":
		return FixDifferential, nil
	}
	return 0, fmt.Errorf("gps: unknown fix quality %q", field)
}

// parseUTCTime decodes hhmmss.sss.
func parseUTCTime(field string) (UTCTime, error) {
	if len(field) < 6 {
		return UTCTime{}, fmt.Errorf("gps: timestamp %q too short", field)
	}
	var t UTCTime
	for _, part := range []struct {
		dst *uint8
		s   string
	}{
		{&t.Hours, field[0:2]},
		{&t.Minutes, field[2:4]},
		{&t.Seconds, field[4:6]},
	} {
		v, err := strconv.ParseUint(part.s, 10, 8)
		if err != nil {
			return UTCTime{}, fmt.Errorf("gps: timestamp %q: %v", field, err)
		}
		*part.dst = uint8(v)
	}
	if len(field) > 7 {
		ms, err := strconv.ParseUint(pad5(field[7:])[:3], 10, 16)
		if err != nil {
			return UTCTime{}, fmt.Errorf("gps: timestamp %q: %v", field, err)
		}
		t.Millis = uint16(ms)
	}
	return t, nil
}

// parseDegrees decodes the NMEA ddmm.mmmmm / dddmm.mmmmm form plus a
// hemisphere letter into whole degrees and a 1e5-scaled fraction.
func parseDegrees(field, hemisphere string) (Degrees, error) {
	if field == "" || hemisphere == "" {
		return Degrees{}, errors.New("no data")
	}
	dot := strings.IndexByte(field, '.')
	if dot < 4 {
		return Degrees{}, fmt.Errorf("malformed coordinate %q", field)
	}
	deg, err := strconv.ParseInt(field[:dot-2], 10, 16)
	if err != nil {
		return Degrees{}, fmt.Errorf("coordinate %q: %v", field, err)
	}
	minWhole, err := strconv.ParseUint(field[dot-2:dot], 10, 8)
	if err != nil || minWhole > 59 {
		return Degrees{}, fmt.Errorf("coordinate minutes %q: %v", field, err)
	}
	minFrac, err := strconv.ParseUint(pad5(field[dot+1:]), 10, 32)
	if err != nil {
		return Degrees{}, fmt.Errorf("coordinate fraction %q: %v", field, err)
	}
	// minutes scaled by 1e5, then /60 makes it a degree fraction in 1e5.
	frac := (minWhole*100_000 + minFrac) / 60

	switch hemisphere {
	case "N", "E":
		return Degrees{Deg: int16(deg), Frac: uint32(frac)}, nil
	case "S", "W":
		return Degrees{Deg: int16(-deg), Frac: uint32(frac)}, nil
	}
	return Degrees{}, fmt.Errorf("unknown hemisphere %q", hemisphere)
}

// parseAltitude decodes metres with up to two decimals into centimetres.
func parseAltitude(field string) (Altitude, error) {
	whole, frac := field, ""
	if i := strings.IndexByte(field, '.'); i >= 0 {
		whole, frac = field[:i], field[i+1:]
	}
	m, err := strconv.ParseUint(whole, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("gps: altitude %q: %v", field, err)
	}
	cm := m * 100
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		} else if len(frac) == 1 {
			frac += "0"
		}
		f, err := strconv.ParseUint(frac, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("gps: altitude %q: %v", field, err)
		}
		cm += f
	}
	return Altitude(cm), nil
}

// pad5 right-pads (or truncates) a digit run to 5 places so fractions keep
// their magnitude regardless of how many digits the receiver emits.
func pad5(s string) string {
	const zeros = "00000"
	if len(s) >= 5 {
		return s[:5]
	}
	return s + zeros[len(s):]
}

// Receiver reads NMEA sentences from a stream.
type Receiver struct {
	rd     *bufio.Reader
	closer io.Closer
}

// Open connects to the GPS on the named serial port at the module's fixed
// 9600 8N1 configuration.
func Open(portName string) (*Receiver, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("gps: cannot open %s: %w", portName, err)
	}
	r := NewReceiver(port)
	r.closer = port
	return r, nil
}

// NewReceiver wraps any byte stream carrying NMEA sentences.
func NewReceiver(r io.Reader) *Receiver {
	return &Receiver{rd: bufio.NewReaderSize(r, 2*sentenceMaxLen)}
}

// NextSentence returns the next complete NMEA sentence, discarding garbage
// between the line ending and the next '$'.
func (g *Receiver) NextSentence() (string, error) {
	for {
		b, err := g.rd.ReadByte()
		if err != nil {
			return "", err
		}
		if b != '$' {
			continue
		}
		line, err := g.rd.ReadString('\n')
		if err != nil {
			return "", err
		}
		if len(line) > sentenceMaxLen {
			continue // noise, not a sentence
		}
		return "$" + line, nil
	}
}

// NextFix reads sentences until a GGA arrives and decodes it. A GGA
// reporting no fix returns ErrNoFix; the caller decides whether to keep
// waiting.
func (g *Receiver) NextFix() (*Fix, error) {
	for {
		s, err := g.NextSentence()
		if err != nil {
			return nil, err
		}
		if len(s) < 7 || s[3:6] != "GGA" {
			continue
		}
		return ParseGGA(s[1:])
	}
}

// Close closes the underlying serial port, if any.
func (g *Receiver) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}
