// Package sim provides a simulated headset transport for running without hardware.
package sim

import (
	"context"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/globevr/internal/vr/device"
)

// Motion returns the head orientation after elapsed time.
type Motion func(elapsed time.Duration) mgl64.Quat

// Still keeps the head facing forward.
func Still() Motion {
	return func(time.Duration) mgl64.Quat { return mgl64.QuatIdent() }
}

// Sweep turns the head side to side and nods, with amplitudes in degrees.
func Sweep(yawDeg, pitchDeg float64, period time.Duration) Motion {
	if period <= 0 {
		period = 8 * time.Second
	}
	return func(elapsed time.Duration) mgl64.Quat {
		phase := 2 * math.Pi * elapsed.Seconds() / period.Seconds()
		yaw := mgl64.DegToRad(yawDeg * math.Sin(phase))
		pitch := mgl64.DegToRad(pitchDeg * math.Sin(2*phase))
		return mgl64.AnglesToQuat(yaw, pitch, 0, mgl64.YXZ)
	}
}

// Transport enumerates one simulated headset with its sensor.
type Transport struct {
	profile device.HMDInfo
	id      string
	motion  Motion
	latency time.Duration
	now     func() time.Time
}

// Option configures a Transport.
type Option func(*Transport)

// WithProfile sets the headset profile. The default is the DK1.
func WithProfile(info device.HMDInfo) Option {
	return func(t *Transport) { t.profile = info }
}

// WithMotion sets the simulated head motion.
func WithMotion(m Motion) Option {
	return func(t *Transport) { t.motion = m }
}

// WithLatency delays enumeration, like a slow device bus.
func WithLatency(d time.Duration) Option {
	return func(t *Transport) { t.latency = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Transport) { t.now = now }
}

// New creates a simulated transport.
func New(opts ...Option) *Transport {
	t := &Transport{
		profile: device.DK1(),
		id:      "sim-0",
		motion:  Sweep(30, 10, 8*time.Second),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Enumerate returns the simulated HMD, its position sensor and a stray gamepad.
func (t *Transport) Enumerate(ctx context.Context) ([]device.Device, error) {
	if t.latency > 0 {
		timer := time.NewTimer(t.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	sensor := &motionSensor{motion: t.motion, now: t.now, start: t.now()}
	return []device.Device{
		&device.Other{ID: "sim-pad", Name: "Simulated Gamepad"},
		t.profile.HMD(t.id),
		&device.PositionSensor{ID: t.id, Name: t.profile.DeviceName + " Tracker", Sensor: sensor},
	}, nil
}

type motionSensor struct {
	motion Motion
	now    func() time.Time
	start  time.Time
}

func (s *motionSensor) State() device.State {
	return device.State{Orientation: FromQuat(s.motion(s.now().Sub(s.start)))}
}

// Script is a sensor that replays a fixed sequence of samples, then repeats the last one.
// A nil sample reports no data.
type Script struct {
	samples []*device.Sample
	next    int
}

// NewScript creates a scripted sensor.
func NewScript(samples ...*device.Sample) *Script {
	return &Script{samples: samples}
}

// State returns the next sample.
func (s *Script) State() device.State {
	if len(s.samples) == 0 {
		return device.State{}
	}
	i := s.next
	if i >= len(s.samples) {
		i = len(s.samples) - 1
	} else {
		s.next++
	}
	return device.State{Orientation: s.samples[i]}
}

// FromQuat converts an orientation to a raw sample.
func FromQuat(q mgl64.Quat) *device.Sample {
	return &device.Sample{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}
