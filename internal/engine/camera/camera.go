// Package camera provides the camera model shared by the stereo rig and the renderer.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a camera position and orthonormal basis.
// The rotation matrix rows are (Right, Up, -Direction); the camera looks down -Z of its
// local frame.
type Pose struct {
	Position  mgl64.Vec3
	Right     mgl64.Vec3
	Up        mgl64.Vec3
	Direction mgl64.Vec3

	// Transform is the reference frame the pose is expressed in.
	// The zero matrix is treated as the identity.
	Transform mgl64.Mat4
}

// NewPose builds an orthonormal pose looking along direction with the given up hint.
func NewPose(position, direction, up mgl64.Vec3) Pose {
	dir := safeNormalize(direction, mgl64.Vec3{0, 0, -1})
	right := safeNormalize(dir.Cross(up), mgl64.Vec3{1, 0, 0})
	return Pose{
		Position:  position,
		Right:     right,
		Up:        right.Cross(dir),
		Direction: dir,
		Transform: mgl64.Ident4(),
	}
}

// RotationMatrix returns the 3x3 matrix whose rows are right, up and -direction.
func (p Pose) RotationMatrix() mgl64.Mat3 {
	return mgl64.Mat3FromRows(p.Right, p.Up, p.Direction.Mul(-1))
}

// SetRotationMatrix writes m back into the basis. Direction is the negated third row.
func (p *Pose) SetRotationMatrix(m mgl64.Mat3) {
	p.Right = m.Row(0)
	p.Up = m.Row(1)
	p.Direction = m.Row(2).Mul(-1)
}

// Frame returns the reference frame, substituting identity for the zero matrix.
func (p Pose) Frame() mgl64.Mat4 {
	if p.Transform == (mgl64.Mat4{}) {
		return mgl64.Ident4()
	}
	return p.Transform
}

// ViewMatrix returns the world-to-camera matrix.
func (p Pose) ViewMatrix() mgl64.Mat4 {
	rot := p.RotationMatrix().Mat4()
	view := rot.Mul4(mgl64.Translate3D(-p.Position[0], -p.Position[1], -p.Position[2]))
	frame := p.Frame()
	if frame == mgl64.Ident4() {
		return view
	}
	return view.Mul4(frame.Inv())
}

// Translate moves the position by offset.
func (p *Pose) Translate(offset mgl64.Vec3) {
	p.Position = p.Position.Add(offset)
}

// Orthonormalize rebuilds right and up from direction, keeping the current handedness.
func (p *Pose) Orthonormalize() {
	dir := safeNormalize(p.Direction, mgl64.Vec3{0, 0, -1})
	right := p.Right.Sub(dir.Mul(p.Right.Dot(dir)))
	right = safeNormalize(right, safeNormalize(dir.Cross(p.Up), perpendicular(dir)))
	p.Direction = dir
	p.Right = right
	p.Up = right.Cross(dir)
}

// Orthonormal reports whether the basis vectors are unit length and mutually orthogonal
// within eps.
func (p Pose) Orthonormal(eps float64) bool {
	for _, v := range []mgl64.Vec3{p.Right, p.Up, p.Direction} {
		if math.Abs(v.Len()-1) > eps {
			return false
		}
	}
	return math.Abs(p.Right.Dot(p.Up)) <= eps &&
		math.Abs(p.Up.Dot(p.Direction)) <= eps &&
		math.Abs(p.Right.Dot(p.Direction)) <= eps
}

// ApproxEqual compares position, basis and frame element-wise within an absolute eps.
func (p Pose) ApproxEqual(other Pose, eps float64) bool {
	return ApproxVec(p.Position, other.Position, eps) &&
		ApproxVec(p.Right, other.Right, eps) &&
		ApproxVec(p.Up, other.Up, eps) &&
		ApproxVec(p.Direction, other.Direction, eps) &&
		p.Frame().ApproxFuncEqual(other.Frame(), within(eps))
}

// ApproxVec reports whether a and b differ by at most eps in every component.
// Unlike mgl64's relative comparison it treats values near zero sensibly.
func ApproxVec(a, b mgl64.Vec3, eps float64) bool {
	return a.ApproxFuncEqual(b, within(eps))
}

func within(eps float64) func(a, b float64) bool {
	return func(a, b float64) bool { return math.Abs(a-b) <= eps }
}

// Camera is a pose plus its viewing frustum.
type Camera struct {
	Pose    Pose
	Frustum Frustum
}

// New returns a camera at pose with the default frustum.
func New(pose Pose) *Camera {
	return &Camera{Pose: pose, Frustum: DefaultFrustum()}
}

// Clone returns an independent copy. All fields are values, so a plain copy suffices.
func (c *Camera) Clone() Camera {
	return *c
}

// Set overwrites the camera with src.
func (c *Camera) Set(src Camera) {
	*c = src
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Frustum.Projection().Mul4(c.Pose.ViewMatrix())
}

// perpendicular returns some unit vector orthogonal to the unit vector v.
func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	axis := mgl64.Vec3{1, 0, 0}
	if math.Abs(v[0]) > 0.9 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return v.Cross(axis).Normalize()
}

func safeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallback
	}
	return v.Mul(1 / l)
}
