// Package raster is a CPU renderer that draws the globe graticule into an image. It lets
// the stereo pipeline run without a GPU.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/globevr/internal/engine/camera"
	"github.com/Faultbox/globevr/internal/engine/globe"
	"github.com/Faultbox/globevr/internal/engine/surface"
)

// Background is the clear color.
var Background = color.RGBA{A: 255}

// Renderer draws line segments seen from its camera.
type Renderer struct {
	cam      *camera.Camera
	target   *surface.Image
	segments []globe.Segment
	radius   float64

	drawn int
}

// New creates a renderer drawing a w x h image of a globe of radius.
func New(cam *camera.Camera, w, h int, radius float64) *Renderer {
	return &Renderer{
		cam:      cam,
		target:   surface.NewImage(w, h),
		segments: globe.Graticule(radius, 15, 72),
		radius:   radius,
	}
}

// Camera returns the live camera.
func (r *Renderer) Camera() *camera.Camera {
	return r.cam
}

// Surface returns the render target.
func (r *Renderer) Surface() surface.Surface {
	return r.target
}

// Image returns the render target.
func (r *Renderer) Image() *surface.Image {
	return r.target
}

// Drawn returns the number of segments drawn by the last Render.
func (r *Renderer) Drawn() int {
	return r.drawn
}

// Render clears the target and draws every front-facing segment in front of the camera.
func (r *Renderer) Render() error {
	r.target.Clear(Background)
	r.drawn = 0

	vp := r.cam.ViewProjection()
	eye := r.cam.Pose.Position
	size := r.target.Bounds().Size()

	for _, s := range r.segments {
		if !r.facing(eye, s.A) && !r.facing(eye, s.B) {
			continue
		}
		a, okA := project(vp, s.A, size)
		b, okB := project(vp, s.B, size)
		if !okA || !okB {
			continue
		}
		if r.line(a, b, s.Color) {
			r.drawn++
		}
	}
	return nil
}

// facing reports whether p on the sphere is on the hemisphere visible from eye.
func (r *Renderer) facing(eye, p mgl64.Vec3) bool {
	return eye.Sub(p).Dot(p) > 0
}

// project maps p to pixel coordinates. Points behind the eye report false.
func project(vp mgl64.Mat4, p mgl64.Vec3, size image.Point) (mgl64.Vec2, bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return mgl64.Vec2{}, false
	}
	x := clip.X() / w
	y := clip.Y() / w
	return mgl64.Vec2{
		(x + 1) / 2 * float64(size.X),
		(1 - y) / 2 * float64(size.Y),
	}, true
}

// line draws from a to b with a DDA, clipping per pixel. Segments far outside the
// target are skipped. It reports whether any pixel was set.
func (r *Renderer) line(a, b mgl64.Vec2, c color.RGBA) bool {
	bounds := r.target.Bounds()
	limit := float64(4 * (bounds.Dx() + bounds.Dy()))

	d := b.Sub(a)
	steps := math.Max(math.Abs(d.X()), math.Abs(d.Y()))
	if steps > limit || math.IsNaN(steps) {
		return false
	}
	n := int(math.Ceil(steps))
	if n == 0 {
		n = 1
	}

	set := false
	for i := 0; i <= n; i++ {
		p := a.Add(d.Mul(float64(i) / float64(n)))
		pt := image.Pt(int(math.Floor(p.X())), int(math.Floor(p.Y())))
		if pt.In(bounds) {
			r.target.SetRGBA(pt.X, pt.Y, c)
			set = true
		}
	}
	return set
}
