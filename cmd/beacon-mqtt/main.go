// Copyright 2025 by the psat-beacon authors, see LICENSE file

// beacon-mqtt is the ground station gateway: it receives CBOR position
// reports over LoRa and republishes them as JSON to an MQTT broker, one
// message per frame, so mapping and logging tools can subscribe.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lonelyjelly84/psat-beacon"
	"github.com/lonelyjelly84/psat-beacon/report"
	"github.com/lonelyjelly84/psat-beacon/rfm95"
)

const pollInterval = 10 * time.Millisecond

// wireReport is the JSON shape published to the broker. Coordinates are
// recombined into decimal degrees for consumers that don't care about the
// fixed-point wire format.
type wireReport struct {
	Seconds    uint32  `json:"seconds"`
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lon"`
	AltitudeM  float64 `json:"alt_m"`
	Satellites uint8   `json:"sats"`
	ReceivedAt string  `json:"received_at"`
}

func main() {
	var (
		spiName   = flag.String("spi", "", "SPI port of the radio (empty for first available)")
		resetName = flag.String("reset", "GPIO25", "GPIO pin wired to the radio reset line")
		profile   = flag.String("profile", "flight", "radio profile")
		broker    = flag.String("broker", "localhost:1883", "MQTT broker host:port")
		topic     = flag.String("topic", "psat/position", "MQTT topic to publish reports to")
		user      = flag.String("user", "", "MQTT username")
		pass      = flag.String("pass", "", "MQTT password")
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

	client, err := connectMQTT(*broker, *user, *pass)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	log.Printf("gateway up, profile %s, publishing to %s", *profile, *topic)

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
			log.Printf("dropping undecodable %d-byte frame: %v", n, err)
			continue
		}
		payload, err := json.Marshal(toWire(pos))
		if err != nil {
			log.Printf("encode: %v", err)
			continue
		}
		if token := client.Publish(*topic, 1, false, payload); !token.WaitTimeout(10 * time.Second) {
			log.Printf("publish: %v", token.Error())
			continue
		}
		log.Printf("published %v", pos)
	}
}

// connectMQTT establishes a persistent broker connection that resubscribes
// after a disconnect.
func connectMQTT(broker, user, pass string) (mqtt.Client, error) {
	hostname, _ := os.Hostname()
	mqtt.ERROR = log.New(os.Stderr, "", 0)
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s", broker))
	opts.ClientID = "beacon-mqtt-" + hostname
	opts.Username = user
	opts.Password = pass

	client := mqtt.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(10 * time.Second) {
		return nil, token.Error()
	}
	return client, nil
}

func toWire(p report.Position) wireReport {
	return wireReport{
		Seconds:    p.Seconds,
		Latitude:   degrees(p.LatDeg, p.LatFrac),
		Longitude:  degrees(p.LonDeg, p.LonFrac),
		AltitudeM:  float64(p.AltCm) / 100,
		Satellites: p.Satellites,
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// degrees recombines whole degrees and the 1e5-scaled fraction, keeping the
// fraction's sign aligned with the hemisphere.
func degrees(deg int16, frac uint32) float64 {
	f := float64(frac) / 1e5
	if deg < 0 {
		return float64(deg) - f
	}
	return float64(deg) + f
}
