// Package surface defines render targets and copying between them.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrUnsupported is returned when a copier cannot read from a surface.
var ErrUnsupported = errors.New("unsupported surface")

// Surface is something a renderer draws into.
type Surface interface {
	Bounds() image.Rectangle
}

// Image is a CPU surface.
type Image struct {
	*image.RGBA
}

// NewImage allocates a w x h surface.
func NewImage(w, h int) *Image {
	return &Image{RGBA: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Clear fills the surface with c.
func (s *Image) Clear(c color.Color) {
	draw.Draw(s.RGBA, s.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// ImageCopier copies a rendered surface into a region of a destination image, scaling
// when the sizes differ.
type ImageCopier struct {
	dst    draw.Image
	rect   image.Rectangle
	scaler draw.Scaler
}

// NewImageCopier copies into rect of dst. An empty rect means all of dst.
func NewImageCopier(dst draw.Image, rect image.Rectangle) *ImageCopier {
	if rect.Empty() {
		rect = dst.Bounds()
	}
	return &ImageCopier{dst: dst, rect: rect, scaler: draw.ApproxBiLinear}
}

// SetScaler replaces the interpolator used for mismatched sizes.
func (c *ImageCopier) SetScaler(s draw.Scaler) {
	c.scaler = s
}

// Copy draws src into the destination region.
func (c *ImageCopier) Copy(src Surface) error {
	img, ok := src.(image.Image)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupported, src)
	}

	sb := img.Bounds()
	if sb.Size() == c.rect.Size() {
		draw.Copy(c.dst, c.rect.Min, img, sb, draw.Src, nil)
		return nil
	}
	c.scaler.Scale(c.dst, c.rect, img, sb, draw.Src, nil)
	return nil
}
