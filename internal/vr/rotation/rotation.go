// Package rotation applies incremental head rotation to a camera that may also be moved
// and turned by other inputs.
//
// The integrator keeps a reference frame separating the head orientation from the scene
// orientation. Each update first folds in whatever changed the camera since the previous
// update, then applies the current head orientation on top:
//
//	vr    = mat(inverse(q))
//	scene = rows(right, up, -direction)
//	ref   = inverse(vr) * scene             first update
//	ref   = ref * (inverse(prev) * scene)   later updates
//	next  = vr * ref
//
// With a constant head orientation and an untouched camera the result is a fixed point.
package rotation

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/globevr/internal/engine/camera"
)

// ErrDegeneratePosition is returned by Level for a camera at the globe centre.
var ErrDegeneratePosition = errors.New("cannot level camera at the origin")

const epsilon = 1e-9

// Integrator carries the reference frame between updates.
type Integrator struct {
	ref       mgl64.Mat3
	prev      mgl64.Mat3
	firstTime bool
}

// New returns an integrator whose next update is a first update.
func New() *Integrator {
	return &Integrator{firstTime: true}
}

// Apply returns pose with the head orientation q applied. Position and Transform are
// unchanged.
func (in *Integrator) Apply(pose camera.Pose, q mgl64.Quat) camera.Pose {
	vr := q.Inverse().Mat4().Mat3()
	scene := pose.RotationMatrix()

	if in.firstTime {
		in.ref = vr.Transpose().Mul3(scene)
		in.firstTime = false
	} else {
		in.ref = in.ref.Mul3(in.prev.Transpose().Mul3(scene))
	}
	in.ref = orthonormalize(in.ref)

	next := vr.Mul3(in.ref)
	in.prev = next

	out := pose
	out.SetRotationMatrix(next)
	return out
}

// Reset makes the next update a first update. Call it after any discontinuous change of
// the camera.
func (in *Integrator) Reset() {
	in.firstTime = true
}

// Level rotates the camera so that its up vector points away from the globe centre,
// keeping the heading as close as possible, and resets the integrator.
func (in *Integrator) Level(p *camera.Pose) error {
	if p.Position.Len() < epsilon {
		return ErrDegeneratePosition
	}

	up := p.Position.Normalize()
	right := p.Direction.Cross(up)
	if right.Len() < epsilon {
		// Looking straight up or down: keep the old right vector on the new horizon.
		right = p.Right.Sub(up.Mul(p.Right.Dot(up)))
		if right.Len() < epsilon {
			right = up.Cross(mgl64.Vec3{1, 0, 0})
			if right.Len() < epsilon {
				right = up.Cross(mgl64.Vec3{0, 1, 0})
			}
		}
	}
	right = right.Normalize()

	p.Right = right
	p.Up = up
	p.Direction = up.Cross(right)
	in.Reset()
	return nil
}

// Teleport moves the camera to a new pose and resets the integrator.
func (in *Integrator) Teleport(p *camera.Pose, to camera.Pose) {
	*p = to
	p.Orthonormalize()
	in.Reset()
}

// orthonormalize re-orthogonalises the rows of m with Gram-Schmidt, keeping the first row's
// direction and the matrix handedness.
func orthonormalize(m mgl64.Mat3) mgl64.Mat3 {
	r0 := m.Row(0)
	r1 := m.Row(1)

	if l := r0.Len(); l > epsilon && !math.IsInf(l, 0) {
		r0 = r0.Mul(1 / l)
	} else {
		return mgl64.Ident3()
	}
	r1 = r1.Sub(r0.Mul(r0.Dot(r1)))
	if l := r1.Len(); l > epsilon {
		r1 = r1.Mul(1 / l)
	} else {
		return mgl64.Ident3()
	}
	r2 := r0.Cross(r1)
	if r2.Dot(m.Row(2)) < 0 {
		r2 = r2.Mul(-1)
	}
	return mgl64.Mat3FromRows(r0, r1, r2)
}
