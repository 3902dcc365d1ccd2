package device

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoHMD means enumeration found no head-mounted display.
	ErrNoHMD = errors.New("no HMD found")
	// ErrNoSensor means an HMD was found but no sensor shares its hardware unit id.
	// The selection still carries the HMD.
	ErrNoSensor = errors.New("no position sensor found for HMD")
	// ErrNoTransport is returned when discovery is started without a transport.
	ErrNoTransport = errors.New("no device transport available")
)

// Transport enumerates the devices attached to the system.
type Transport interface {
	Enumerate(ctx context.Context) ([]Device, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context) ([]Device, error)

// Enumerate calls f.
func (f TransportFunc) Enumerate(ctx context.Context) ([]Device, error) {
	return f(ctx)
}

// None is a transport with no devices.
type None struct{}

// Enumerate always returns an empty list.
func (None) Enumerate(ctx context.Context) ([]Device, error) {
	return nil, ctx.Err()
}

// Selection is the HMD and sensor chosen from an enumeration.
type Selection struct {
	HMD    *HMD
	Sensor *PositionSensor
}

// Select picks the first HMD and the first position sensor sharing its hardware unit id.
// When no sensor matches, the HMD is still returned together with ErrNoSensor.
func Select(devices []Device) (Selection, error) {
	var sel Selection
	for _, d := range devices {
		if h, ok := d.(*HMD); ok {
			sel.HMD = h
			break
		}
	}
	if sel.HMD == nil {
		return sel, ErrNoHMD
	}

	for _, d := range devices {
		if s, ok := d.(*PositionSensor); ok && s.ID == sel.HMD.ID {
			sel.Sensor = s
			break
		}
	}
	if sel.Sensor == nil {
		return sel, fmt.Errorf("%w: %s", ErrNoSensor, sel.HMD.ID)
	}
	return sel, nil
}

// Discovery is the pending result of Discover.
type Discovery struct {
	done chan struct{}
	sel  Selection
	err  error
}

// Discover enumerates devices on t in the background and selects an HMD and its sensor.
func Discover(ctx context.Context, t Transport) *Discovery {
	d := &Discovery{done: make(chan struct{})}
	go func() {
		defer close(d.done)
		if t == nil {
			d.err = ErrNoTransport
			return
		}
		devices, err := t.Enumerate(ctx)
		if err != nil {
			d.err = fmt.Errorf("enumerating devices: %w", err)
			return
		}
		d.sel, d.err = Select(devices)
	}()
	return d
}

// Done is closed when discovery has finished.
func (d *Discovery) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until discovery finishes or ctx is done.
func (d *Discovery) Wait(ctx context.Context) (Selection, error) {
	select {
	case <-d.done:
		return d.sel, d.err
	case <-ctx.Done():
		return Selection{}, ctx.Err()
	}
}
