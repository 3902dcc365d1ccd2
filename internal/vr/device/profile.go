package device

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// HMDInfo is the physical description of a headset. Distances are in metres.
type HMDInfo struct {
	DeviceName             string  `yaml:"device_name"`
	DeviceManufacturer     string  `yaml:"device_manufacturer"`
	ResolutionHorz         int     `yaml:"resolution_horz"`
	ResolutionVert         int     `yaml:"resolution_vert"`
	ScreenSizeHorz         float64 `yaml:"screen_size_horz"`
	ScreenSizeVert         float64 `yaml:"screen_size_vert"`
	ScreenCenterVert       float64 `yaml:"screen_center_vert"`
	EyeToScreenDistance    float64 `yaml:"eye_to_screen_distance"`
	LensSeparationDistance float64 `yaml:"lens_separation_distance"`
	InterpupillaryDistance float64 `yaml:"interpupillary_distance"`
}

// DK1 returns the Oculus Rift DK1 profile, used when no headset is present.
func DK1() HMDInfo {
	return HMDInfo{
		DeviceName:             "Oculus Rift DK1",
		DeviceManufacturer:     "Oculus VR",
		ResolutionHorz:         1280,
		ResolutionVert:         800,
		ScreenSizeHorz:         0.14976,
		ScreenSizeVert:         0.0936,
		ScreenCenterVert:       0.0468,
		EyeToScreenDistance:    0.041,
		LensSeparationDistance: 0.0635,
		InterpupillaryDistance: 0.064,
	}
}

// Validate checks that the profile describes a usable screen.
func (info HMDInfo) Validate() error {
	if info.ResolutionHorz <= 0 || info.ResolutionVert <= 0 {
		return errors.New("hmd profile: resolution must be positive")
	}
	if info.ScreenSizeHorz <= 0 || info.ScreenSizeVert <= 0 {
		return errors.New("hmd profile: screen size must be positive")
	}
	if info.EyeToScreenDistance <= 0 {
		return errors.New("hmd profile: eye to screen distance must be positive")
	}
	if info.LensSeparationDistance <= 0 || info.LensSeparationDistance >= info.ScreenSizeHorz {
		return errors.New("hmd profile: lens separation must lie within the screen")
	}
	return nil
}

// EyeParameters computes what a headset with this profile would report for eye.
// Each eye sees half the screen through a lens centred at half the lens separation.
func (info HMDInfo) EyeParameters(eye Eye) EyeParameters {
	d := info.EyeToScreenDistance
	outer := mgl64.RadToDeg(math.Atan((info.ScreenSizeHorz/2 - info.LensSeparationDistance/2) / d))
	inner := mgl64.RadToDeg(math.Atan((info.LensSeparationDistance / 2) / d))

	centerV := info.ScreenCenterVert
	if centerV == 0 {
		centerV = info.ScreenSizeVert / 2
	}
	up := mgl64.RadToDeg(math.Atan(centerV / d))
	down := mgl64.RadToDeg(math.Atan((info.ScreenSizeVert - centerV) / d))

	half := info.ResolutionHorz / 2
	p := EyeParameters{
		RecommendedFieldOfView: FieldOfView{Up: up, Down: down},
		RenderRect:             Rect{Width: half, Height: info.ResolutionVert},
	}
	switch eye {
	case EyeRight:
		p.EyeTranslation = mgl64.Vec3{info.InterpupillaryDistance / 2, 0, 0}
		p.RecommendedFieldOfView.Left = inner
		p.RecommendedFieldOfView.Right = outer
		p.RenderRect.X = half
	default:
		p.EyeTranslation = mgl64.Vec3{-info.InterpupillaryDistance / 2, 0, 0}
		p.RecommendedFieldOfView.Left = outer
		p.RecommendedFieldOfView.Right = inner
	}
	return p
}

// HMD builds a device descriptor for the profile.
func (info HMDInfo) HMD(id string) *HMD {
	return &HMD{
		ID:    id,
		Name:  info.DeviceName,
		Left:  info.EyeParameters(EyeLeft),
		Right: info.EyeParameters(EyeRight),
	}
}

// ScreenAspect returns the per-eye aspect ratio of the physical screen.
func (info HMDInfo) ScreenAspect() float64 {
	if info.ResolutionVert == 0 {
		return 1
	}
	return float64(info.ResolutionHorz) / float64(2*info.ResolutionVert)
}
