// Copyright 2025 by the psat-beacon authors, see LICENSE file

// Package beacon glues the hardware-independent drivers in this repository
// to real hosts via periph.io. The rfm95 and gps packages only see narrow
// interfaces (an SPI transactor, an output pin, a byte stream); this package
// opens the actual ports. Commands that run a beacon end to end live in the
// cmd directory tree.
package beacon
