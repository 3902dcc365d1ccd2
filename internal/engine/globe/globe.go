// Package globe builds the reference geometry the viewer draws: a graticule of
// parallels and meridians plus a solid occluding sphere.
package globe

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Colors used for graticule lines.
var (
	LineColor      = color.RGBA{R: 90, G: 120, B: 170, A: 255}
	HighlightColor = color.RGBA{R: 240, G: 200, B: 80, A: 255}
	SurfaceColor   = color.RGBA{R: 12, G: 24, B: 48, A: 255}
)

// Segment is one straight line of the graticule.
type Segment struct {
	A, B  mgl64.Vec3
	Color color.RGBA
}

// Point returns the point at longitude/latitude (degrees) on a sphere of radius.
func Point(radius, lonDeg, latDeg float64) mgl64.Vec3 {
	theta := mgl64.DegToRad(90 - latDeg)
	phi := mgl64.DegToRad(lonDeg)
	return mgl64.SphericalToCartesian(radius, theta, phi)
}

// Graticule returns parallels and meridians every stepDeg degrees. Full circles are
// approximated with arcSegments lines; meridians use half as many. The equator and
// prime meridian use HighlightColor.
func Graticule(radius, stepDeg float64, arcSegments int) []Segment {
	if stepDeg <= 0 || stepDeg >= 90 {
		stepDeg = 15
	}
	if arcSegments < 4 {
		arcSegments = 72
	}
	arc := 360 / float64(arcSegments)

	var segs []Segment
	for lat := -90 + stepDeg; lat < 90-1e-9; lat += stepDeg {
		c := LineColor
		if math.Abs(lat) < 1e-9 {
			c = HighlightColor
		}
		for i := 0; i < arcSegments; i++ {
			lon := float64(i) * arc
			segs = append(segs, Segment{
				A:     Point(radius, lon, lat),
				B:     Point(radius, lon+arc, lat),
				Color: c,
			})
		}
	}

	half := arcSegments / 2
	for lon := 0.0; lon < 360-1e-9; lon += stepDeg {
		c := LineColor
		if lon == 0 {
			c = HighlightColor
		}
		for i := 0; i < half; i++ {
			lat := -90 + float64(i)*arc
			segs = append(segs, Segment{
				A:     Point(radius, lon, lat),
				B:     Point(radius, lon, lat+arc),
				Color: c,
			})
		}
	}
	return segs
}

// Sphere returns a triangle list covering a sphere of radius with the given number of
// stacks and slices.
func Sphere(radius float64, stacks, slices int) []mgl64.Vec3 {
	if stacks < 2 {
		stacks = 2
	}
	if slices < 3 {
		slices = 3
	}
	dLat := 180 / float64(stacks)
	dLon := 360 / float64(slices)

	tris := make([]mgl64.Vec3, 0, stacks*slices*6)
	for i := 0; i < stacks; i++ {
		lat0 := -90 + float64(i)*dLat
		lat1 := lat0 + dLat
		for j := 0; j < slices; j++ {
			lon0 := float64(j) * dLon
			lon1 := lon0 + dLon
			a := Point(radius, lon0, lat0)
			b := Point(radius, lon1, lat0)
			c := Point(radius, lon1, lat1)
			d := Point(radius, lon0, lat1)
			tris = append(tris, a, b, c, a, c, d)
		}
	}
	return tris
}
