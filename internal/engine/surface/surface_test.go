package surface

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"
)

type fakeSurface struct{}

func (fakeSurface) Bounds() image.Rectangle { return image.Rect(0, 0, 4, 4) }

func TestImageCopierSameSize(t *testing.T) {
	src := NewImage(4, 2)
	src.Clear(color.RGBA{R: 255, A: 255})

	display := image.NewRGBA(image.Rect(0, 0, 8, 2))
	right := NewImageCopier(display, image.Rect(4, 0, 8, 2))
	if err := right.Copy(src); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	if got := display.RGBAAt(5, 1); got.R != 255 {
		t.Errorf("right half not copied, pixel = %v", got)
	}
	if got := display.RGBAAt(1, 1); got.A != 0 {
		t.Errorf("left half touched, pixel = %v", got)
	}
}

func TestImageCopierScales(t *testing.T) {
	src := NewImage(2, 2)
	src.Clear(color.RGBA{G: 200, A: 255})

	dst := image.NewRGBA(image.Rect(0, 0, 6, 6))
	c := NewImageCopier(dst, image.Rectangle{})
	c.SetScaler(draw.NearestNeighbor)
	if err := c.Copy(src); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	for _, p := range []image.Point{{0, 0}, {3, 3}, {5, 5}} {
		if got := dst.RGBAAt(p.X, p.Y); got.G != 200 {
			t.Errorf("pixel %v = %v, want green", p, got)
		}
	}
}

func TestImageCopierUnsupported(t *testing.T) {
	c := NewImageCopier(image.NewRGBA(image.Rect(0, 0, 4, 4)), image.Rectangle{})
	if err := c.Copy(fakeSurface{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Copy(fake) error = %v, want ErrUnsupported", err)
	}
}
