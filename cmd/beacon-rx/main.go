// Copyright 2025 by the psat-beacon authors, see LICENSE file

// beacon-rx listens for CBOR position reports over LoRa and prints them.
// Frames that fail CBOR decoding are dumped in hex rather than discarded so
// a misconfigured transmitter is still visible.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/lonelyjelly84/psat-beacon"
	"github.com/lonelyjelly84/psat-beacon/report"
	"github.com/lonelyjelly84/psat-beacon/rfm95"
)

const pollInterval = 10 * time.Millisecond

func main() {
	var (
		spiName   = flag.String("spi", "", "SPI port of the radio (empty for first available)")
		resetName = flag.String("reset", "GPIO25", "GPIO pin wired to the radio reset line")
		profile   = flag.String("profile", "flight", "radio profile")
	)
	flag.Parse()

	cfg, err := beacon.Profile(*profile)
	if err != nil {
		log.Fatal(err)
	}
	spiConn, err := beacon.OpenSPI(*spiName)
	if err != nil {
		log.Fatal(err)
	}
	defer spiConn.Close()
	resetPin, err := beacon.OpenPin(*resetName)
	if err != nil {
		log.Fatal(err)
	}

	drv, err := rfm95.New(spiConn, resetPin, rfm95.Options{Logger: log.Printf})
	if err != nil {
		log.Fatalf("radio init: %v", err)
	}
	if err := drv.SetConfig(cfg); err != nil {
		log.Fatalf("radio config: %v", err)
	}
	radio := rfm95.NewRadio(drv)
	log.Printf("listening, profile %s", *profile)

	buf := make([]byte, rfm95.FifoSize)
	for {
		n, err := radio.Receive(buf)
		if errors.Is(err, rfm95.ErrWouldBlock) {
			time.Sleep(pollInterval)
			continue
		}
		if err != nil {
			log.Printf("receive: %v", err)
			continue
		}
		pos, err := report.Decode(buf[:n])
		if err != nil {
			log.Printf("undecodable %d-byte frame: %s", n, hex.EncodeToString(buf[:n]))
			continue
		}
		log.Printf("%v", pos)
	}
}
