// Copyright 2025 by the psat-beacon authors, see LICENSE file

package rfm95

import (
	"errors"
	"testing"
)

// Every decoder must round-trip all of its defined codes and reject the
// other 2xx raw bytes with ErrInvalidArgument instead of clamping.

func TestDecodeSpreadingFactor(t *testing.T) {
	valid := map[byte]SpreadingFactor{
		7: SF7, 8: SF8, 9: SF9, 10: SF10, 11: SF11, 12: SF12,
	}
	for raw := 0; raw < 256; raw++ {
		got, err := DecodeSpreadingFactor(byte(raw))
		want, ok := valid[byte(raw)]
		if !ok {
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("raw %#x: error = %v, expected ErrInvalidArgument", raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("raw %#x: unexpected error %v", raw, err)
		}
		if got != want || got.encode() != byte(raw) {
			t.Errorf("raw %#x: decoded %v (re-encodes to %#x)", raw, got, got.encode())
		}
	}
}

func TestDecodeBandwidth(t *testing.T) {
	valid := map[byte]Bandwidth{
		0x0: BW7_8, 0x1: BW10_4, 0x2: BW15_6, 0x3: BW20_8, 0x4: BW31_25,
		0x5: BW41_7, 0x6: BW62_5, 0x7: BW125, 0x8: BW250, 0x9: BW500,
	}
	for raw := 0; raw < 256; raw++ {
		got, err := DecodeBandwidth(byte(raw))
		want, ok := valid[byte(raw)]
		if !ok {
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("raw %#x: error = %v, expected ErrInvalidArgument", raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("raw %#x: unexpected error %v", raw, err)
		}
		if got != want || got.encode() != byte(raw) {
			t.Errorf("raw %#x: decoded %v (re-encodes to %#x)", raw, got, got.encode())
		}
		if got.Hertz() == 0 {
			t.Errorf("bandwidth %v reports zero Hz", got)
		}
	}
}

func TestDecodeCodingRate(t *testing.T) {
	valid := map[byte]CodingRate{1: CR4_5, 2: CR4_6, 3: CR4_7, 4: CR4_8}
	for raw := 0; raw < 256; raw++ {
		got, err := DecodeCodingRate(byte(raw))
		want, ok := valid[byte(raw)]
		if !ok {
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("raw %#x: error = %v, expected ErrInvalidArgument", raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("raw %#x: unexpected error %v", raw, err)
		}
		if got != want || got.encode() != byte(raw) {
			t.Errorf("raw %#x: decoded %v (re-encodes to %#x)", raw, got, got.encode())
		}
	}
}

func TestDecodeTwoValuedTypes(t *testing.T) {
	for raw := 0; raw < 256; raw++ {
		p, perr := DecodePolarity(byte(raw))
		h, herr := DecodeHeaderMode(byte(raw))
		c, cerr := DecodeCrcMode(byte(raw))
		if raw > 1 {
			for name, err := range map[string]error{"polarity": perr, "header mode": herr, "crc mode": cerr} {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("%s raw %#x: error = %v, expected ErrInvalidArgument", name, raw, err)
				}
			}
			continue
		}
		if perr != nil || herr != nil || cerr != nil {
			t.Fatalf("raw %#x: unexpected error %v %v %v", raw, perr, herr, cerr)
		}
		if p.encode() != byte(raw) || h.encode() != byte(raw) || c.encode() != byte(raw) {
			t.Errorf("raw %#x: round trip lost the value", raw)
		}
	}
}

func TestFrequencyWord(t *testing.T) {
	// Steps are 32MHz >> 19 = 61.035Hz: 868.0MHz = 0xD90000, 915.0MHz = 0xE4C000.
	if got := Frequency(868_000_000).frf(); got != 0xd90000 {
		t.Errorf("frf(868MHz) = %#x, expected 0xd90000", got)
	}
	if got := Freq915_0.frf(); got != 0xe4c000 {
		t.Errorf("frf(915MHz) = %#x, expected 0xe4c000", got)
	}
}

func TestConfigCompleteness(t *testing.T) {
	cfg := NewConfig().
		SetSpreadingFactor(SF10).
		SetBandwidth(BW62_5).
		SetCodingRate(CR4_5).
		SetPolarity(PolarityNormal).
		SetHeaderMode(HeaderExplicit).
		SetCrcMode(CrcDisabled).
		SetSyncWord(SyncWordPrivate).
		SetPreambleLength(PreambleLength8)
	if cfg.complete() {
		t.Error("config without a frequency reported complete")
	}
	cfg.SetFrequency(Freq915_0)
	if !cfg.complete() {
		t.Error("fully populated config reported incomplete")
	}
}
