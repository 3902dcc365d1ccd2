package headtrack

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/globevr/internal/vr/device"
	"github.com/Faultbox/globevr/internal/vr/device/sim"
)

const eps = 1e-12

func assertQuat(t *testing.T, want, got mgl64.Quat, delta float64) {
	t.Helper()
	// q and -q are the same rotation.
	if want.Dot(got) < 0 {
		got = got.Scale(-1)
	}
	assert.InDelta(t, want.W, got.W, delta, "w")
	assert.InDeltaSlice(t, want.V[:], got.V[:], delta, "xyz")
}

func TestReadNormalises(t *testing.T) {
	tr := New(sim.NewScript(&device.Sample{X: 1, Y: 2, Z: 3, W: 4}))
	q := tr.Read()

	assert.InDelta(t, 1, q.Len(), eps)
	assertQuat(t, mgl64.Quat{W: 4, V: mgl64.Vec3{1, 2, 3}}.Normalize(), q, eps)
}

func TestReadWithoutData(t *testing.T) {
	tests := []struct {
		name   string
		sensor device.Sensor
	}{
		{"nil sensor", nil},
		{"nil orientation", sim.NewScript(nil)},
		{"all zero", sim.NewScript(&device.Sample{})},
		{"nan", sim.NewScript(&device.Sample{X: math.NaN(), W: 1})},
		{"inf", sim.NewScript(&device.Sample{Y: math.Inf(1), W: 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, mgl64.QuatIdent(), New(tt.sensor).Read())
		})
	}
}

func TestHoldLast(t *testing.T) {
	turned := sim.FromQuat(mgl64.QuatRotate(0.4, mgl64.Vec3{0, 1, 0}))
	script := []*device.Sample{turned, {}, nil}

	held := New(sim.NewScript(script...), HoldLast(true))
	first := held.Read()
	assertQuat(t, first, held.Read(), eps)
	assertQuat(t, first, held.Read(), eps)

	dropped := New(sim.NewScript(script...))
	dropped.Read()
	assert.Equal(t, mgl64.QuatIdent(), dropped.Read())
}

func TestHoldLastBeforeAnyData(t *testing.T) {
	assert.Equal(t, mgl64.QuatIdent(), New(sim.NewScript(nil), HoldLast(true)).Read())
}

func TestRecenterKeepsPitch(t *testing.T) {
	yaw := mgl64.QuatRotate(mgl64.DegToRad(70), mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(mgl64.DegToRad(20), mgl64.Vec3{1, 0, 0})
	head := sim.FromQuat(yaw.Mul(pitch))

	tr := New(sim.NewScript(head))
	assert.True(t, tr.Recenter())
	assertQuat(t, pitch, tr.Read(), 1e-12)
}

func TestRecenterThenTurn(t *testing.T) {
	start := mgl64.QuatRotate(1.0, mgl64.Vec3{0, 1, 0})
	later := mgl64.QuatRotate(1.3, mgl64.Vec3{0, 1, 0})
	tr := New(sim.NewScript(sim.FromQuat(start), sim.FromQuat(later)))

	assert.True(t, tr.Recenter())
	assertQuat(t, mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0}), tr.Read(), 1e-12)
}

func TestRecenterUpdatesHeldOrientation(t *testing.T) {
	turned := sim.FromQuat(mgl64.QuatRotate(0.8, mgl64.Vec3{0, 1, 0}))
	tr := New(sim.NewScript(turned, turned, nil), HoldLast(true))

	assertQuat(t, mgl64.QuatRotate(0.8, mgl64.Vec3{0, 1, 0}), tr.Read(), eps)
	assert.True(t, tr.Recenter())
	// The sensor drops out right after recentering: the held view stays recentered.
	assertQuat(t, mgl64.QuatIdent(), tr.Read(), eps)
}

func TestRecenterDegenerateYaw(t *testing.T) {
	// Upside down about X: no yaw component to extract.
	tr := New(sim.NewScript(&device.Sample{X: 1}))
	assert.True(t, tr.Recenter())
	assertQuat(t, mgl64.Quat{V: mgl64.Vec3{1, 0, 0}}, tr.Read(), eps)
}

func TestRecenterWithoutData(t *testing.T) {
	assert.False(t, New(nil).Recenter())
}
