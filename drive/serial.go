package drive

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/msiedlarek/fluxfat/internal/log"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Command codes, following the Greaseweazle-style command/ACK framing:
// every command is a byte opcode plus a length-prefixed payload, answered
// by a two-byte ACK (opcode echo, status).
const (
	cmdSeek      = 2
	cmdHead      = 3
	cmdMotor     = 6
	cmdReadFlux  = 7
	cmdWriteFlux = 8
)

const (
	ackOkay         = 0
	ackNoIndex      = 2
	ackWriteProtect = 6
	ackBadCylinder  = 11
)

func ackError(code byte) error {
	switch code {
	case ackOkay:
		return nil
	case ackNoIndex:
		return fmt.Errorf("drive: no index pulse")
	case ackWriteProtect:
		return fmt.Errorf("drive: write protected")
	case ackBadCylinder:
		return fmt.Errorf("drive: invalid cylinder")
	default:
		return fmt.Errorf("drive: device returned status 0x%02x", code)
	}
}

// FindPort scans attached serial ports for a known flux controller VID/PID
// and returns the matching port name, or an error if none is found.
func FindPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("drive: enumerating serial ports: %w", err)
	}
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		vid, pid := parseHex(p.VID), parseHex(p.PID)
		switch {
		case vid == GreaseweazleVendorID && pid == GreaseweazleProductID,
			vid == KryoFluxVendorID && pid == KryoFluxProductID,
			vid == SuperCardProVendorID && pid == SuperCardProProductID:
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("drive: no flux controller found among %d serial ports", len(ports))
}

func parseHex(s string) int {
	var v int
	fmt.Sscanf(s, "%x", &v)
	return v
}

// SerialTransport drives a flux controller over a serial port using the
// command/ACK framing above.
type SerialTransport struct {
	port serial.Port
}

// OpenSerial opens portName at the controller's reset baud rate, then
// twiddles it the way Greaseweazle-class firmware expects to recognize a
// fresh session.
func OpenSerial(portName string) (*SerialTransport, error) {
	log.Printf("opening serial drive on %s", portName)
	port, err := serial.Open(portName, &serial.Mode{BaudRate: 9600})
	if err != nil {
		return nil, fmt.Errorf("drive: opening %s: %w", portName, err)
	}
	if err := port.SetMode(&serial.Mode{BaudRate: 10000}); err != nil {
		port.Close()
		return nil, fmt.Errorf("drive: resetting baud: %w", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := port.SetMode(&serial.Mode{BaudRate: 9600}); err != nil {
		port.Close()
		return nil, fmt.Errorf("drive: restoring baud: %w", err)
	}
	return &SerialTransport{port: port}, nil
}

func (s *SerialTransport) doCommand(cmd []byte) error {
	if _, err := s.port.Write(cmd); err != nil {
		return fmt.Errorf("drive: writing command: %w", err)
	}
	ack := make([]byte, 2)
	if _, err := io.ReadFull(s.port, ack); err != nil {
		return fmt.Errorf("drive: reading ack: %w", err)
	}
	if ack[0] != cmd[0] {
		return fmt.Errorf("drive: command echo mismatch (0x%02x != 0x%02x)", ack[0], cmd[0])
	}
	return ackError(ack[1])
}

// SeekTrack implements Transport.
func (s *SerialTransport) SeekTrack(cylinder, side int) error {
	if err := s.doCommand([]byte{cmdHead, 3, byte(side)}); err != nil {
		return err
	}
	return s.doCommand([]byte{cmdSeek, 3, byte(cylinder)})
}

// ReadFluxRevolution implements Transport. It issues a read-flux command
// and reads back a length-prefixed stream of pulse-interval bytes.
func (s *SerialTransport) ReadFluxRevolution() ([]byte, error) {
	if err := s.doCommand([]byte{cmdReadFlux, 3, 1}); err != nil {
		return nil, err
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(s.port, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("drive: reading flux length: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	intervals := make([]byte, n)
	if _, err := io.ReadFull(s.port, intervals); err != nil {
		return nil, fmt.Errorf("drive: reading flux stream: %w", err)
	}
	return intervals, nil
}

// WriteFluxRevolution implements Transport: length-prefixes the interval
// stream and follows the same command/ACK framing as a read.
func (s *SerialTransport) WriteFluxRevolution(intervals []byte) error {
	if err := s.doCommand([]byte{cmdWriteFlux, 3, 0}); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(intervals)))
	if _, err := s.port.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("drive: writing flux length: %w", err)
	}
	if _, err := s.port.Write(intervals); err != nil {
		return fmt.Errorf("drive: writing flux stream: %w", err)
	}
	ack := make([]byte, 2)
	if _, err := io.ReadFull(s.port, ack); err != nil {
		return fmt.Errorf("drive: reading write-flux ack: %w", err)
	}
	return ackError(ack[1])
}

// Close implements Transport.
func (s *SerialTransport) Close() error { return s.port.Close() }
