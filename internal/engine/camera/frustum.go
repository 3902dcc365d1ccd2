package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frustum is a perspective frustum with an optional projection offset.
type Frustum struct {
	// Fov is the angle of the larger dimension in radians: horizontal when
	// AspectRatio > 1, vertical otherwise.
	Fov         float64
	AspectRatio float64
	Near        float64
	Far         float64

	// XOffset and YOffset shift the frustum window by a fraction of its full width/height.
	// Positive XOffset moves it right, positive YOffset moves it down.
	XOffset float64
	YOffset float64
}

// DefaultFrustum returns a 60 degree frustum sized for globe-scale scenes.
func DefaultFrustum() Frustum {
	return Frustum{
		Fov:         mgl64.DegToRad(60),
		AspectRatio: 1,
		Near:        1,
		Far:         5e8,
	}
}

// SetOffset sets the projection offset.
func (f *Frustum) SetOffset(x, y float64) {
	f.XOffset = x
	f.YOffset = y
}

// FovY returns the vertical field of view in radians.
func (f Frustum) FovY() float64 {
	if f.AspectRatio > 1 {
		return 2 * math.Atan(math.Tan(f.Fov/2)/f.AspectRatio)
	}
	return f.Fov
}

// Bounds returns the near-plane window including the offset.
func (f Frustum) Bounds() (left, right, bottom, top float64) {
	top = f.Near * math.Tan(f.FovY()/2)
	right = f.AspectRatio * top

	dx := f.XOffset * 2 * right
	dy := f.YOffset * 2 * top
	return -right + dx, right + dx, -top - dy, top - dy
}

// Projection returns the off-centre perspective matrix.
func (f Frustum) Projection() mgl64.Mat4 {
	l, r, b, t := f.Bounds()
	return mgl64.Frustum(l, r, b, t, f.Near, f.Far)
}
