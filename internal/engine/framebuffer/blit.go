package framebuffer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/globevr/internal/engine/surface"
)

// Blitter copies a rendered eye into a region of another framebuffer, usually the
// window's default framebuffer, with glBlitFramebuffer.
type Blitter struct {
	target       uint32
	rect         image.Rectangle
	targetHeight int
}

// NewBlitter copies into rect of the framebuffer object target (0 for the window).
// rect has its origin at the top left of a target targetHeight pixels tall.
func NewBlitter(target uint32, rect image.Rectangle, targetHeight int) *Blitter {
	return &Blitter{target: target, rect: rect, targetHeight: targetHeight}
}

// SetRect moves the destination region, e.g. after a window resize.
func (b *Blitter) SetRect(rect image.Rectangle, targetHeight int) {
	b.rect = rect
	b.targetHeight = targetHeight
}

// Copy blits src, which must be a *Framebuffer, into the destination region.
func (b *Blitter) Copy(src surface.Surface) error {
	fb, ok := src.(*Framebuffer)
	if !ok {
		return fmt.Errorf("%w: %T", surface.ErrUnsupported, src)
	}

	var prevRead, prevDraw int32
	gl.GetIntegerv(gl.READ_FRAMEBUFFER_BINDING, &prevRead)
	gl.GetIntegerv(gl.DRAW_FRAMEBUFFER_BINDING, &prevDraw)
	defer func() {
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(prevRead))
		gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, uint32(prevDraw))
	}()

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, b.target)

	dst := glRect(b.rect, b.targetHeight)
	filter := uint32(gl.NEAREST)
	if dst.Size() != fb.size {
		filter = gl.LINEAR
	}
	gl.BlitFramebuffer(
		0, 0, int32(fb.size.X), int32(fb.size.Y),
		int32(dst.Min.X), int32(dst.Min.Y), int32(dst.Max.X), int32(dst.Max.Y),
		gl.COLOR_BUFFER_BIT, filter,
	)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glBlitFramebuffer: error 0x%x", code)
	}
	return nil
}

// glRect converts a top-left origin rectangle into OpenGL's bottom-left window
// coordinates for a target height pixels tall.
func glRect(r image.Rectangle, height int) image.Rectangle {
	return image.Rect(r.Min.X, height-r.Max.Y, r.Max.X, height-r.Min.Y)
}

// FlipRows converts bottom-up RGBA rows as returned by glReadPixels into an image.
func FlipRows(pixels []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	if len(pixels) < rowSize*height {
		return img
	}
	for y := 0; y < height; y++ {
		srcOffset := (height - 1 - y) * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}
	return img
}

// ReadWindow reads rect of the window's back buffer. rect has its origin at the top
// left of a window windowHeight pixels tall.
func ReadWindow(rect image.Rectangle, windowHeight int) *image.RGBA {
	r := glRect(rect, windowHeight)
	w, h := r.Dx(), r.Dy()
	pixels := make([]byte, w*h*4)

	var prevRead int32
	gl.GetIntegerv(gl.READ_FRAMEBUFFER_BINDING, &prevRead)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadBuffer(gl.BACK)
	gl.ReadPixels(int32(r.Min.X), int32(r.Min.Y), int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(prevRead))

	return FlipRows(pixels, w, h)
}
