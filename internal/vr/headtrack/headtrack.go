// Package headtrack turns raw sensor readings into head orientations.
package headtrack

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/num/quat"

	"github.com/Faultbox/globevr/internal/logger"
	"github.com/Faultbox/globevr/internal/vr/device"
)

const minNorm = 1e-12

// Tracker reads the head orientation from a sensor.
// A Tracker is used from the frame goroutine only.
type Tracker struct {
	sensor   device.Sensor
	holdLast bool
	log      *zap.Logger

	last    mgl64.Quat
	heading mgl64.Quat
	noData  bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// HoldLast makes Read return the last good orientation instead of identity when the
// sensor has no data.
func HoldLast(on bool) Option {
	return func(t *Tracker) { t.holdLast = on }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// New creates a tracker for sensor. A nil sensor always reads identity.
func New(sensor device.Sensor, opts ...Option) *Tracker {
	t := &Tracker{
		sensor:  sensor,
		last:    mgl64.QuatIdent(),
		heading: mgl64.QuatIdent(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.Named("headtrack")
	}
	return t
}

// Read returns the current unit head orientation. When the sensor reports nothing usable
// it returns identity, or the last good orientation with HoldLast.
func (t *Tracker) Read() mgl64.Quat {
	q, ok := t.sample()
	if !ok {
		if !t.noData {
			t.noData = true
			t.log.Debug("orientation unavailable")
		}
		if t.holdLast {
			return t.last
		}
		return mgl64.QuatIdent()
	}
	if t.noData {
		t.noData = false
		t.log.Debug("orientation restored")
	}

	t.last = t.heading.Mul(q)
	return t.last
}

// Recenter makes the current head heading the forward direction for all later reads.
// Pitch and roll are left alone. The held orientation is recentered too, so a dropout
// right after does not snap back. It reports false if the sensor had no data.
func (t *Tracker) Recenter() bool {
	q, ok := t.sample()
	if !ok {
		return false
	}

	n := math.Hypot(q.W, q.V[1])
	if n < minNorm {
		t.heading = mgl64.QuatIdent()
	} else {
		yaw := mgl64.Quat{W: q.W / n, V: mgl64.Vec3{0, q.V[1] / n, 0}}
		t.heading = yaw.Inverse()
	}
	t.last = t.heading.Mul(q)
	t.log.Debug("heading recentered", zap.Float64("yaw_deg", mgl64.RadToDeg(2*math.Atan2(q.V[1], q.W))))
	return true
}

// sample reads the sensor and normalises the result.
func (t *Tracker) sample() (mgl64.Quat, bool) {
	if t.sensor == nil {
		return mgl64.Quat{}, false
	}
	s := t.sensor.State().Orientation
	if s == nil {
		return mgl64.Quat{}, false
	}

	raw := quat.Number{Real: s.W, Imag: s.X, Jmag: s.Y, Kmag: s.Z}
	if quat.IsNaN(raw) || quat.IsInf(raw) {
		return mgl64.Quat{}, false
	}
	n := quat.Abs(raw)
	if n < minNorm {
		return mgl64.Quat{}, false
	}
	u := quat.Scale(1/n, raw)
	return mgl64.Quat{W: u.Real, V: mgl64.Vec3{u.Imag, u.Jmag, u.Kmag}}, true
}
