package renderer

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/globevr/internal/engine/globe"
)

// lineVertices flattens the graticule into position + color vertices for GL_LINES.
func lineVertices(radius float64) []float32 {
	segs := globe.Graticule(radius, 15, 72)
	out := make([]float32, 0, len(segs)*12)
	for _, s := range segs {
		out = appendVertex(out, s.A, s.Color)
		out = appendVertex(out, s.B, s.Color)
	}
	return out
}

// solidVertices flattens the occluding sphere for GL_TRIANGLES.
func solidVertices(radius float64) []float32 {
	tris := globe.Sphere(radius, 36, 72)
	out := make([]float32, 0, len(tris)*6)
	for _, v := range tris {
		out = appendVertex(out, v, globe.SurfaceColor)
	}
	return out
}

func appendVertex(out []float32, p mgl64.Vec3, c color.RGBA) []float32 {
	return append(out,
		float32(p.X()), float32(p.Y()), float32(p.Z()),
		float32(c.R)/255, float32(c.G)/255, float32(c.B)/255,
	)
}

// toMat32 narrows a view-projection built in float64 for upload.
func toMat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
