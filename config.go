// Copyright 2025 by the psat-beacon authors, see LICENSE file

package beacon

import (
	"fmt"
	"sort"

	"github.com/lonelyjelly84/psat-beacon/rfm95"
)

// Profiles are the named radio settings the beacon commands accept. All of
// them use explicit headers, normal polarity, the private sync word and an
// 8-symbol preamble; they differ in data rate and range.
var profiles = map[string]func() *rfm95.Config{
	// The flight profile: long range at ~490bps, CRC left to the frame format.
	"flight": func() *rfm95.Config {
		return baseConfig().
			SetSpreadingFactor(rfm95.SF10).
			SetBandwidth(rfm95.BW62_5).
			SetCrcMode(rfm95.CrcDisabled)
	},
	// Bench testing: fast enough to iterate, CRC on to catch wiring trouble.
	"bench": func() *rfm95.Config {
		return baseConfig().
			SetSpreadingFactor(rfm95.SF7).
			SetBandwidth(rfm95.BW125).
			SetCrcMode(rfm95.CrcEnabled)
	},
	// Maximum range for recovery, ~18 seconds of airtime per frame.
	"recovery": func() *rfm95.Config {
		return baseConfig().
			SetSpreadingFactor(rfm95.SF12).
			SetBandwidth(rfm95.BW62_5).
			SetCrcMode(rfm95.CrcDisabled)
	},
}

func baseConfig() *rfm95.Config {
	return rfm95.NewConfig().
		SetCodingRate(rfm95.CR4_5).
		SetPolarity(rfm95.PolarityNormal).
		SetHeaderMode(rfm95.HeaderExplicit).
		SetSyncWord(rfm95.SyncWordPrivate).
		SetPreambleLength(rfm95.PreambleLength8).
		SetFrequency(rfm95.Freq915_0)
}

// Profile returns the named radio configuration.
func Profile(name string) (*rfm95.Config, error) {
	f, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("beacon: unknown profile %q, have %v", name, ProfileNames())
	}
	return f(), nil
}

// ProfileNames lists the available profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
