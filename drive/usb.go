package drive

import (
	"encoding/binary"
	"fmt"

	"github.com/google/gousb"
)

// Bulk endpoint addresses used by this adapter's wire framing: one OUT
// endpoint for commands/flux-out, one IN endpoint for ACKs/flux-in.
const (
	usbEndpointOut = 0x01
	usbEndpointIn  = 0x81
)

// USBTransport drives a flux controller over a raw USB bulk connection,
// bypassing the serial-port abstraction entirely.
type USBTransport struct {
	ctx   *gousb.Context
	dev   *gousb.Device
	cfg   *gousb.Config
	intf  *gousb.Interface
	inEP  *gousb.InEndpoint
	outEP *gousb.OutEndpoint
}

// OpenUSB opens the first attached device matching one of this package's
// known flux-controller VID/PID pairs and claims its bulk interface.
func OpenUSB() (*USBTransport, error) {
	ctx := gousb.NewContext()

	candidates := [][2]gousb.ID{
		{GreaseweazleVendorID, GreaseweazleProductID},
		{KryoFluxVendorID, KryoFluxProductID},
		{SuperCardProVendorID, SuperCardProProductID},
	}

	var dev *gousb.Device
	for _, c := range candidates {
		d, err := ctx.OpenDeviceWithVIDPID(c[0], c[1])
		if err != nil {
			ctx.Close()
			return nil, fmt.Errorf("drive: opening USB device %v: %w", c, err)
		}
		if d != nil {
			dev = d
			break
		}
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("drive: no flux controller found on USB")
	}

	dev.SetAutoDetach(true)

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("drive: selecting USB config: %w", err)
	}
	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("drive: claiming USB interface: %w", err)
	}

	inEP, err := intf.InEndpoint(usbEndpointIn)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("drive: opening IN endpoint: %w", err)
	}
	outEP, err := intf.OutEndpoint(usbEndpointOut)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("drive: opening OUT endpoint: %w", err)
	}

	return &USBTransport{
		ctx:   ctx,
		dev:   dev,
		cfg:   cfg,
		intf:  intf,
		inEP:  inEP,
		outEP: outEP,
	}, nil
}

func (u *USBTransport) doCommand(cmd []byte) error {
	if _, err := u.outEP.Write(cmd); err != nil {
		return fmt.Errorf("drive: usb command write: %w", err)
	}
	ack := make([]byte, 2)
	if _, err := u.inEP.Read(ack); err != nil {
		return fmt.Errorf("drive: usb ack read: %w", err)
	}
	if ack[0] != cmd[0] {
		return fmt.Errorf("drive: usb command echo mismatch (0x%02x != 0x%02x)", ack[0], cmd[0])
	}
	return ackError(ack[1])
}

// SeekTrack implements Transport.
func (u *USBTransport) SeekTrack(cylinder, side int) error {
	if err := u.doCommand([]byte{cmdHead, 3, byte(side)}); err != nil {
		return err
	}
	return u.doCommand([]byte{cmdSeek, 3, byte(cylinder)})
}

// ReadFluxRevolution implements Transport.
func (u *USBTransport) ReadFluxRevolution() ([]byte, error) {
	if err := u.doCommand([]byte{cmdReadFlux, 3, 1}); err != nil {
		return nil, err
	}
	lenBuf := make([]byte, 4)
	if _, err := u.inEP.Read(lenBuf); err != nil {
		return nil, fmt.Errorf("drive: usb flux length read: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf)
	intervals := make([]byte, n)
	read := 0
	for read < len(intervals) {
		m, err := u.inEP.Read(intervals[read:])
		if err != nil {
			return nil, fmt.Errorf("drive: usb flux stream read: %w", err)
		}
		read += m
	}
	return intervals, nil
}

// WriteFluxRevolution implements Transport.
func (u *USBTransport) WriteFluxRevolution(intervals []byte) error {
	if err := u.doCommand([]byte{cmdWriteFlux, 3, 0}); err != nil {
		return err
	}
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(intervals)))
	if _, err := u.outEP.Write(lenBuf); err != nil {
		return fmt.Errorf("drive: usb flux length write: %w", err)
	}
	if _, err := u.outEP.Write(intervals); err != nil {
		return fmt.Errorf("drive: usb flux stream write: %w", err)
	}
	ack := make([]byte, 2)
	if _, err := u.inEP.Read(ack); err != nil {
		return fmt.Errorf("drive: usb write-flux ack: %w", err)
	}
	return ackError(ack[1])
}

// Close releases the interface, config, device and context in reverse
// order of acquisition.
func (u *USBTransport) Close() error {
	u.intf.Close()
	u.cfg.Close()
	err := u.dev.Close()
	u.ctx.Close()
	return err
}
