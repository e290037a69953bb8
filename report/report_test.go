// Copyright 2025 by the psat-beacon authors, see LICENSE file

package report

import (
	"testing"

	"github.com/lonelyjelly84/psat-beacon/gps"
	"github.com/lonelyjelly84/psat-beacon/rfm95"
)

var testFix = gps.Fix{
	Time:       gps.UTCTime{Hours: 17, Minutes: 8, Seconds: 34},
	Latitude:   gps.Degrees{Deg: 41, Frac: 41493},
	Longitude:  gps.Degrees{Deg: -81, Frac: 86139},
	Quality:    gps.FixGPS,
	Satellites: 5,
	Altitude:   gps.Altitude(28020),
}

func TestRoundTrip(t *testing.T) {
	p := FromFix(&testFix)
	frame, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(frame) > rfm95.FifoSize {
		t.Fatalf("frame is %d bytes, exceeds FIFO", len(frame))
	}
	got, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != p {
		t.Errorf("round trip changed the position:\n got %v\nsent %v", got, p)
	}
}

func TestFromFix(t *testing.T) {
	p := FromFix(&testFix)
	if p.Seconds != 61714 {
		t.Errorf("got %d seconds, expected 61714", p.Seconds)
	}
	if p.LatDeg != 41 || p.LatFrac != 41493 {
		t.Errorf("latitude mangled: %d.%05d", p.LatDeg, p.LatFrac)
	}
	if p.LonDeg != -81 || p.LonFrac != 86139 {
		t.Errorf("longitude mangled: %d.%05d", p.LonDeg, p.LonFrac)
	}
	if p.AltCm != 28020 || p.Satellites != 5 {
		t.Errorf("altitude/satellites mangled: %dcm %d sats", p.AltCm, p.Satellites)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	p := FromFix(&testFix)
	a, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(a) != string(b) {
		t.Error("two encodings of the same position differ")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Error("Decode of garbage succeeded")
	}
}
