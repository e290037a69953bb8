// Copyright 2025 by the psat-beacon authors, see LICENSE file

// beacon-tx reads GPS fixes and transmits CBOR position reports over LoRa.
// This is the flight-side program: it loops forever, waiting for a fix,
// encoding it, and polling the radio until the frame is on the air.
package main

import (
	"errors"
	"flag"
	"log"
	"time"

	"github.com/lonelyjelly84/psat-beacon"
	"github.com/lonelyjelly84/psat-beacon/gps"
	"github.com/lonelyjelly84/psat-beacon/report"
	"github.com/lonelyjelly84/psat-beacon/rfm95"
)

const pollInterval = 10 * time.Millisecond

func main() {
	var (
		spiName   = flag.String("spi", "", "SPI port of the radio (empty for first available)")
		resetName = flag.String("reset", "GPIO25", "GPIO pin wired to the radio reset line")
		gpsPort   = flag.String("gps", "/dev/ttyS0", "serial port of the GPS receiver")
		profile   = flag.String("profile", "flight", "radio profile")
		interval  = flag.Duration("interval", 30*time.Second, "time between transmissions")
		debug     = flag.Bool("debug", false, "log every radio register access")
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

	opts := rfm95.Options{Logger: log.Printf}
	if *debug {
		opts.Trace = traceLog
	}
	drv, err := rfm95.New(spiConn, resetPin, opts)
	if err != nil {
		log.Fatalf("radio init: %v", err)
	}
	if err := drv.SetConfig(cfg); err != nil {
		log.Fatalf("radio config: %v", err)
	}
	radio := rfm95.NewRadio(drv)
	log.Printf("radio ready, profile %s", *profile)

	rcv, err := gps.Open(*gpsPort)
	if err != nil {
		log.Fatal(err)
	}
	defer rcv.Close()

	for {
		fix, err := rcv.NextFix()
		if errors.Is(err, gps.ErrNoFix) {
			log.Printf("waiting for GPS fix")
			continue
		}
		if err != nil {
			log.Fatalf("gps: %v", err)
		}
		frame, err := report.FromFix(fix).Encode()
		if err != nil {
			log.Printf("skipping report: %v", err)
			continue
		}
		if err := transmit(radio, frame); err != nil {
			log.Printf("transmit failed: %v", err)
			continue
		}
		log.Printf("sent %d bytes: %v %v alt %v sats %d",
			len(frame), fix.Latitude, fix.Longitude, fix.Altitude, fix.Satellites)
		time.Sleep(*interval)
	}
}

// transmit polls the radio until the frame has been sent.
func transmit(radio *rfm95.Radio, frame []byte) error {
	for {
		_, err := radio.Transmit(frame)
		if errors.Is(err, rfm95.ErrWouldBlock) {
			time.Sleep(pollInterval)
			continue
		}
		return err
	}
}

func traceLog(op, addr, mosi, miso byte) {
	dir := "rd"
	if op != 0 {
		dir = "wr"
	}
	log.Printf("spi %s %#02x mosi=%#02x miso=%#02x", dir, addr, mosi, miso)
}
