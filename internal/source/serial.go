// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"fmt"
	"log"

	serial "github.com/jacobsa/go-serial/serial"
)

// OpenSerial opens the radio receiver's serial port (8N1) and streams its lines.
func OpenSerial(portName string, baudRate int) (*Lines, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	log.Printf("source: serial port opened on %s at %d baud", opts.PortName, opts.BaudRate)

	return NewLines(port, port.Close), nil
}
