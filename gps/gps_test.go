// Copyright 2025 by the psat-beacon authors, see LICENSE file

package gps

import (
	"errors"
	"io"
	"strings"
	"testing"
)

const sampleGGA = "GPGGA,170834.00,4124.89620,N,08151.68370,W,1,05,1.5,280.2,M,-34.0,M,,*75"

func TestParseGGA(t *testing.T) {
	fix, err := ParseGGA(sampleGGA)
	if err != nil {
		t.Fatalf("ParseGGA: %v", err)
	}
	if fix.Time.Hours != 17 || fix.Time.Minutes != 8 || fix.Time.Seconds != 34 {
		t.Errorf("got time %v, expected 17:08:34", fix.Time)
	}
	// 41°24.89620' N -> 41° + 2489620/60 * 1e-5 = 41.41493°
	if fix.Latitude.Deg != 41 || fix.Latitude.Frac != 41493 {
		t.Errorf("got latitude %v, expected 41.41493°", fix.Latitude)
	}
	// 81°51.68370' W -> -(81° + 5168370/60 * 1e-5) with Frac kept positive
	if fix.Longitude.Deg != -81 || fix.Longitude.Frac != 86139 {
		t.Errorf("got longitude %v, expected -81.86139°", fix.Longitude)
	}
	if fix.Quality != FixGPS {
		t.Errorf("got quality %v, expected gps", fix.Quality)
	}
	if fix.Satellites != 5 {
		t.Errorf("got %d satellites, expected 5", fix.Satellites)
	}
	if fix.Altitude.Centimetres() != 28020 {
		t.Errorf("got altitude %v, expected 280.20m", fix.Altitude)
	}
}

func TestParseGGASouthEast(t *testing.T) {
	fix, err := ParseGGA("GNGGA,120000.00,3351.00000,S,15112.00000,E,2,09,0.9,12.0,M,,M,,")
	if err != nil {
		t.Fatalf("ParseGGA: %v", err)
	}
	if fix.Latitude.Deg != -33 {
		t.Errorf("got latitude degrees %d, expected -33", fix.Latitude.Deg)
	}
	if fix.Longitude.Deg != 151 {
		t.Errorf("got longitude degrees %d, expected 151", fix.Longitude.Deg)
	}
	if fix.Quality != FixDifferential {
		t.Errorf("got quality %v, expected dgps", fix.Quality)
	}
}

func TestParseGGANoFix(t *testing.T) {
	_, err := ParseGGA("GPGGA,170834.00,,,,,0,00,,,M,,M,,")
	if !errors.Is(err, ErrNoFix) {
		t.Fatalf("got %v, expected ErrNoFix", err)
	}
}

func TestParseGGAMalformed(t *testing.T) {
	for _, sentence := range []string{
		"",
		"GPRMC,170834,A,4124.8962,N,08151.6837,W,0.0,0.0,260826,,",
		"GPGGA,170834.00,4124.8962,N",                                // truncated
		"GPGGA,170834.00,4124.8962,X,08151.6837,W,1,05,,280.2,M,,M,,", // bad hemisphere
		"GPGGA,170834.00,glorp,N,08151.6837,W,1,05,,280.2,M,,M,,",
		"GPGGA,170834.00,4124.8962,N,08151.6837,W,9,05,,280.2,M,,M,,", // bad quality
	} {
		if _, err := ParseGGA(sentence); err == nil {
			t.Errorf("ParseGGA(%q) succeeded, expected error", sentence)
		}
	}
}

func TestSecondsOfDay(t *testing.T) {
	tm := UTCTime{Hours: 17, Minutes: 8, Seconds: 34}
	if got := tm.SecondsOfDay(); got != 61714 {
		t.Errorf("got %d seconds of day, expected 61714", got)
	}
}

func TestAltitudeUnits(t *testing.T) {
	a := Altitude(28020)
	if a.Metres() != 280 {
		t.Errorf("got %dm, expected 280m", a.Metres())
	}
	if a.String() != "280.20m" {
		t.Errorf("got %q, expected 280.20m", a.String())
	}
}

func TestNextSentenceSkipsGarbage(t *testing.T) {
	r := NewReceiver(strings.NewReader("\xffnoise$GPGSV,1,1,00*79\r\n$" + sampleGGA + "\r\n"))
	s, err := r.NextSentence()
	if err != nil {
		t.Fatalf("NextSentence: %v", err)
	}
	if !strings.HasPrefix(s, "$GPGSV") {
		t.Errorf("got %q, expected the GSV sentence first", s)
	}
}

func TestNextFixSkipsOtherSentences(t *testing.T) {
	stream := "$GPGSV,1,1,00*79\r\n" +
		"$GPRMC,170834,A,4124.8962,N,08151.6837,W,0.0,0.0,260826,,*00\r\n" +
		"$" + sampleGGA + "\r\n"
	fix, err := NewReceiver(strings.NewReader(stream)).NextFix()
	if err != nil {
		t.Fatalf("NextFix: %v", err)
	}
	if fix.Satellites != 5 {
		t.Errorf("got %d satellites, expected 5", fix.Satellites)
	}
}

func TestNextFixEOF(t *testing.T) {
	if _, err := NewReceiver(strings.NewReader("$GPGSV,1,1,00*79\r\n")).NextFix(); !errors.Is(err, io.EOF) {
		t.Fatalf("got %v, expected EOF", err)
	}
}
