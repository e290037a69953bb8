// Copyright 2025 by the psat-beacon authors, see LICENSE file

package rfm95

// register describes one logical radio parameter as an (address, mask,
// offset) triple. The address is the 7-bit register address, the mask covers
// the bits belonging to the field, and the offset is the position of the
// mask's lowest set bit. Descriptors are fixed at compile time and never
// constructed at runtime.
type register struct {
	addr   byte
	mask   byte
	offset byte
}

// Register catalogue. Addresses per the SX1276/RFM95 datasheet, LoRa page.
// Several registers appear twice: once as the full byte and once per
// bit field packed into it.
var (
	regFifo          = register{0x00, 0xff, 0}
	regOpMode        = register{0x01, 0xff, 0}
	regOpModeMode    = register{0x01, 0x07, 0}
	regOpModeLoRa    = register{0x01, 0x80, 7}
	regFrfMsb        = register{0x06, 0xff, 0}
	regFrfMid        = register{0x07, 0xff, 0}
	regFrfLsb        = register{0x08, 0xff, 0}
	regFifoAddrPtr   = register{0x0d, 0xff, 0}
	regFifoTxBase    = register{0x0e, 0xff, 0}
	regFifoRxBase    = register{0x0f, 0xff, 0}
	regFifoRxCurrent = register{0x10, 0xff, 0}
	regIrqFlags      = register{0x12, 0xff, 0}
	regRxNbBytes     = register{0x13, 0xff, 0}
	regBandwidth     = register{0x1d, 0xf0, 4}
	regCodingRate    = register{0x1d, 0x0e, 1}
	regHeaderMode    = register{0x1d, 0x01, 0}
	regSpreading     = register{0x1e, 0xf0, 4}
	regCrcMode       = register{0x1e, 0x04, 2}
	regSymbTimeoutHi = register{0x1e, 0x03, 0}
	regSymbTimeoutLo = register{0x1f, 0xff, 0}
	regPreambleMsb   = register{0x20, 0xff, 0}
	regPreambleLsb   = register{0x21, 0xff, 0}
	regPayloadLength = register{0x22, 0xff, 0}
	regPolarity      = register{0x33, 0x40, 6}
	regSyncWord      = register{0x39, 0xff, 0}
	regDioMapping1   = register{0x40, 0xff, 0}
	regVersion       = register{0x42, 0xff, 0}
)

// Operating modes, values for the mode bits of RegOpMode.
const (
	modeSleep = iota
	modeStandby
	modeFsTx     // frequency synthesis TX
	modeTx       // TX
	modeFsRx     // frequency synthesis RX
	modeRxCont   // RX continuous
	modeRxSingle // RX single
	modeCad      // channel activity detection
)

// opModeLoRa is the full RegOpMode value selecting LoRa mode while asleep.
// The LoRa bit may only be flipped in sleep mode.
const opModeLoRa = 0x80

// IRQ flag bits of RegIrqFlags. Writing a 1 clears the flag.
const (
	irqRxTimeout = 1 << 7
	irqRxDone    = 1 << 6
	irqCrcErr    = 1 << 5
	irqValidHdr  = 1 << 4
	irqTxDone    = 1 << 3
	irqCadDone   = 1 << 2
	irqFhsChg    = 1 << 1
	irqCadDetect = 1 << 0
)

// siliconRevision is the one RegVersion value this driver supports.
const siliconRevision = 0x12

// fifoBase is where both outbound and inbound payloads are staged. The
// driver owns the whole FIFO, so TX and RX share the base address.
const fifoBase = 0x00
