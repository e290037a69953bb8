// Copyright 2025 by the psat-beacon authors, see LICENSE file

// The report package defines the beacon's over-the-air position frame. It is
// a CBOR map with small integer keys so a frame stays well under the radio
// FIFO limit and ground software in any language can decode it.
package report

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/lonelyjelly84/psat-beacon/gps"
	"github.com/lonelyjelly84/psat-beacon/rfm95"
)

// Position is one beacon report. Latitude and longitude are split into whole
// degrees and a 1e5-scaled fraction exactly as the GPS delivers them.
type Position struct {
	Seconds    uint32 `cbor:"1,keyasint"` // UTC seconds of day
	LatDeg     int16  `cbor:"2,keyasint"`
	LatFrac    uint32 `cbor:"3,keyasint"`
	LonDeg     int16  `cbor:"4,keyasint"`
	LonFrac    uint32 `cbor:"5,keyasint"`
	AltCm      uint32 `cbor:"6,keyasint"`
	Satellites uint8  `cbor:"7,keyasint"`
}

// FromFix converts a GPS fix into a report frame.
func FromFix(fix *gps.Fix) Position {
	return Position{
		Seconds:    fix.Time.SecondsOfDay(),
		LatDeg:     fix.Latitude.Deg,
		LatFrac:    fix.Latitude.Frac,
		LonDeg:     fix.Longitude.Deg,
		LonFrac:    fix.Longitude.Frac,
		AltCm:      fix.Altitude.Centimetres(),
		Satellites: fix.Satellites,
	}
}

// encMode uses core deterministic encoding so identical positions always
// produce identical frames.
var encMode, _ = cbor.CoreDetEncOptions().EncMode()

// Encode serializes the position and confirms it fits in a single radio
// payload.
func (p Position) Encode() ([]byte, error) {
	buf, err := encMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("report: encode: %w", err)
	}
	if len(buf) > rfm95.FifoSize {
		return nil, fmt.Errorf("report: frame is %d bytes, radio limit is %d", len(buf), rfm95.FifoSize)
	}
	return buf, nil
}

// Decode parses a received frame.
func Decode(frame []byte) (Position, error) {
	var p Position
	if err := cbor.Unmarshal(frame, &p); err != nil {
		return Position{}, fmt.Errorf("report: decode: %w", err)
	}
	return p, nil
}

func (p Position) String() string {
	return fmt.Sprintf("t=%ds lat=%d.%05d lon=%d.%05d alt=%dcm sats=%d",
		p.Seconds, p.LatDeg, p.LatFrac, p.LonDeg, p.LonFrac, p.AltCm, p.Satellites)
}
