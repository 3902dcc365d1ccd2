// Package stereo derives per-eye cameras from a master camera and headset eye parameters.
package stereo

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/globevr/internal/engine/camera"
	"github.com/Faultbox/globevr/internal/logger"
	"github.com/Faultbox/globevr/internal/vr/device"
)

var (
	// ErrInvalidEye is reported when a camera is requested for an eye other than
	// left, right or mono.
	ErrInvalidEye = errors.New("invalid eye")
	// ErrInvalidFieldOfView is returned for eye parameters with a half-angle outside
	// ±90 degrees or a horizontal or vertical total outside (0, 180).
	ErrInvalidFieldOfView = errors.New("invalid field of view")
)

// EyeGeometry is the per-eye data derived once from the headset's eye parameters.
type EyeGeometry struct {
	// Translation is the eye's lateral offset along the camera's right vector.
	Translation float64
	FieldOfView device.FieldOfView
	AspectRatio float64

	// Scale and Offset turn the asymmetric field of view into a symmetric one plus a
	// projection offset.
	Scale  mgl64.Vec2
	Offset mgl64.Vec2
}

// Fov returns the frustum angle in radians along the dominant axis.
func (g EyeGeometry) Fov() float64 {
	if g.AspectRatio > 1 {
		return mgl64.DegToRad((g.FieldOfView.Left + g.FieldOfView.Right) * g.Scale.X())
	}
	return mgl64.DegToRad((g.FieldOfView.Up + g.FieldOfView.Down) * g.Scale.Y())
}

// DeriveEyeParams computes the geometry for one eye. fallbackAspect is used when the
// eye has no render rectangle.
func DeriveEyeParams(p device.EyeParameters, fallbackAspect float64) (EyeGeometry, error) {
	fov := p.RecommendedFieldOfView
	if err := checkFieldOfView(fov); err != nil {
		return EyeGeometry{}, err
	}

	upTan := math.Tan(mgl64.DegToRad(fov.Up))
	downTan := math.Tan(mgl64.DegToRad(fov.Down))
	leftTan := math.Tan(mgl64.DegToRad(fov.Left))
	rightTan := math.Tan(mgl64.DegToRad(fov.Right))

	xSize := 2 * math.Tan(mgl64.DegToRad((fov.Left+fov.Right)/2))
	ySize := 2 * math.Tan(mgl64.DegToRad((fov.Up+fov.Down)/2))

	aspect := fallbackAspect
	if !p.RenderRect.Empty() {
		aspect = float64(p.RenderRect.Width) / float64(p.RenderRect.Height)
	}
	if aspect <= 0 {
		aspect = 1
	}

	return EyeGeometry{
		Translation: p.EyeTranslation.X(),
		FieldOfView: fov,
		AspectRatio: aspect,
		Scale: mgl64.Vec2{
			math.Abs(rightTan+leftTan) / xSize,
			math.Abs(downTan+upTan) / ySize,
		},
		Offset: mgl64.Vec2{
			(rightTan - leftTan) / (2 * (rightTan + leftTan)),
			(downTan - upTan) / (2 * (downTan + upTan)),
		},
	}, nil
}

func checkFieldOfView(fov device.FieldOfView) error {
	for _, a := range []float64{fov.Up, fov.Down, fov.Left, fov.Right} {
		if math.IsNaN(a) || a <= -90 || a >= 90 {
			return fmt.Errorf("%w: half-angle %v out of range", ErrInvalidFieldOfView, a)
		}
	}
	if h := fov.Left + fov.Right; h <= 0 || h >= 180 {
		return fmt.Errorf("%w: horizontal %v", ErrInvalidFieldOfView, h)
	}
	if v := fov.Up + fov.Down; v <= 0 || v >= 180 {
		return fmt.Errorf("%w: vertical %v", ErrInvalidFieldOfView, v)
	}
	return nil
}

// Rig turns a master camera into per-eye cameras.
type Rig struct {
	left     EyeGeometry
	right    EyeGeometry
	ipdScale float64
	aspect   float64
	onError  func(error)
}

// Option configures a Rig.
type Option func(*Rig)

// WithIPDScale scales the eye separation. Values <= 0 mean 1. Values above 1 make the
// world look smaller.
func WithIPDScale(s float64) Option {
	return func(r *Rig) { r.ipdScale = s }
}

// WithFallbackAspect sets the aspect ratio used for eyes without a render rectangle.
func WithFallbackAspect(a float64) Option {
	return func(r *Rig) { r.aspect = a }
}

// WithErrorHandler sets the callback for invalid eye selectors.
func WithErrorHandler(h func(error)) Option {
	return func(r *Rig) { r.onError = h }
}

// New derives the geometry for both eyes.
func New(left, right device.EyeParameters, opts ...Option) (*Rig, error) {
	r := &Rig{aspect: 1}
	for _, opt := range opts {
		opt(r)
	}
	if r.ipdScale <= 0 {
		r.ipdScale = 1
	}
	if r.onError == nil {
		r.onError = logger.Reporter("stereo")
	}

	var err error
	if r.left, err = DeriveEyeParams(left, r.aspect); err != nil {
		return nil, fmt.Errorf("left eye: %w", err)
	}
	if r.right, err = DeriveEyeParams(right, r.aspect); err != nil {
		return nil, fmt.Errorf("right eye: %w", err)
	}
	return r, nil
}

// FromHMD builds a rig for a headset.
func FromHMD(h *device.HMD, opts ...Option) (*Rig, error) {
	return New(h.Left, h.Right, opts...)
}

// ConfigureEye returns a copy of master set up for eye: projection offset, aspect ratio,
// field of view and a lateral shift of the position. Any other eye, including EyeMono,
// gets a copy of master with the projection offset cleared. Master is never modified.
func (r *Rig) ConfigureEye(master camera.Camera, eye device.Eye) camera.Camera {
	out := master.Clone()
	out.Frustum.SetOffset(0, 0)

	var g EyeGeometry
	switch eye {
	case device.EyeLeft:
		g = r.left
	case device.EyeRight:
		g = r.right
	case device.EyeMono:
		return out
	default:
		r.onError(fmt.Errorf("%w: %q", ErrInvalidEye, eye))
		return out
	}

	out.Frustum.SetOffset(g.Offset.X(), 0)
	out.Frustum.AspectRatio = g.AspectRatio
	out.Frustum.Fov = g.Fov()
	out.Pose.Translate(out.Pose.Right.Mul(g.Translation * r.ipdScale))
	return out
}

// Geometry returns the derived geometry for a left or right eye.
func (r *Rig) Geometry(eye device.Eye) (EyeGeometry, bool) {
	switch eye {
	case device.EyeLeft:
		return r.left, true
	case device.EyeRight:
		return r.right, true
	}
	return EyeGeometry{}, false
}

// Offsets returns the projection offsets of both eyes.
func (r *Rig) Offsets() (left, right mgl64.Vec2) {
	return r.left.Offset, r.right.Offset
}

// IPDScale returns the effective eye separation scale.
func (r *Rig) IPDScale() float64 {
	return r.ipdScale
}
