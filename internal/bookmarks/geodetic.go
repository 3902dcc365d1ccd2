package bookmarks

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wroge/wgs84"

	"github.com/Faultbox/globevr/internal/engine/camera"
)

const (
	epsgLonLat     = 4326
	epsgGeocentric = 4978
)

// Geodetic places a camera above the WGS84 ellipsoid. Angles are in degrees; heading is
// clockwise from north and pitch is positive above the horizon.
type Geodetic struct {
	Longitude float64 `yaml:"longitude"`
	Latitude  float64 `yaml:"latitude"`
	Height    float64 `yaml:"height"`
	Heading   float64 `yaml:"heading"`
	Pitch     float64 `yaml:"pitch"`
}

var toGeocentric = wgs84.EPSG().Transform(epsgLonLat, epsgGeocentric)

// Pose converts the location to an Earth-centred camera pose.
func (g Geodetic) Pose() (camera.Pose, error) {
	if g.Latitude < -90 || g.Latitude > 90 {
		return camera.Pose{}, fmt.Errorf("latitude %v out of range", g.Latitude)
	}
	if g.Pitch <= -90 || g.Pitch >= 90 {
		return camera.Pose{}, fmt.Errorf("pitch %v must be strictly between -90 and 90", g.Pitch)
	}

	x, y, z := toGeocentric(g.Longitude, g.Latitude, g.Height)
	position := mgl64.Vec3{x, y, z}
	for _, v := range position {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return camera.Pose{}, fmt.Errorf("converting %v,%v to geocentric failed", g.Longitude, g.Latitude)
		}
	}

	east, north, up := enu(mgl64.DegToRad(g.Longitude), mgl64.DegToRad(g.Latitude))
	heading := mgl64.DegToRad(g.Heading)
	pitch := mgl64.DegToRad(g.Pitch)

	horizontal := north.Mul(math.Cos(heading)).Add(east.Mul(math.Sin(heading)))
	direction := horizontal.Mul(math.Cos(pitch)).Add(up.Mul(math.Sin(pitch)))

	return camera.NewPose(position, direction, up), nil
}

// enu returns the local east, north and up unit vectors on the ellipsoid surface.
func enu(lon, lat float64) (east, north, up mgl64.Vec3) {
	sinLon, cosLon := math.Sincos(lon)
	sinLat, cosLat := math.Sincos(lat)
	east = mgl64.Vec3{-sinLon, cosLon, 0}
	north = mgl64.Vec3{-sinLat * cosLon, -sinLat * sinLon, cosLat}
	up = mgl64.Vec3{cosLat * cosLon, cosLat * sinLon, sinLat}
	return east, north, up
}
