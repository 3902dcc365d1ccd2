// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/globevr/internal/vr/device"
)

// Transport names accepted in VRConfig.Transport.
const (
	TransportSim  = "sim"
	TransportNone = "none"
)

// Config holds all viewer settings.
type Config struct {
	Display   DisplayConfig   `yaml:"display"`
	VR        VRConfig        `yaml:"vr"`
	Movement  MovementConfig  `yaml:"movement"`
	Scene     SceneConfig     `yaml:"scene"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DisplayConfig holds window settings.
type DisplayConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Fullscreen    bool   `yaml:"fullscreen"`
	VSync         bool   `yaml:"vsync"`
	ShowFPS       bool   `yaml:"show_fps"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// VRConfig holds headset and stereo settings.
type VRConfig struct {
	Transport           string          `yaml:"transport"` // sim or none
	IPDScale            float64         `yaml:"ipd_scale"`
	HoldLastOrientation bool            `yaml:"hold_last_orientation"`
	DiscoveryTimeout    time.Duration   `yaml:"discovery_timeout"`
	Near                float64         `yaml:"near"`
	Far                 float64         `yaml:"far"`
	Profile             *device.HMDInfo `yaml:"profile,omitempty"` // overrides the DK1 profile
	Sim                 SimMotionConfig `yaml:"sim"`
}

// SimMotionConfig drives the simulated head sensor.
type SimMotionConfig struct {
	YawDegrees   float64       `yaml:"yaw_degrees"`
	PitchDegrees float64       `yaml:"pitch_degrees"`
	Period       time.Duration `yaml:"period"`
}

// MovementConfig holds camera movement settings.
type MovementConfig struct {
	ForwardSpeed    float64 `yaml:"forward_speed"`
	StrafeSpeed     float64 `yaml:"strafe_speed"`
	BoostMultiplier float64 `yaml:"boost_multiplier"`
	DragSensitivity float64 `yaml:"drag_sensitivity"` // radians per pixel
}

// SceneConfig holds the globe and start pose.
type SceneConfig struct {
	GlobeRadius   float64 `yaml:"globe_radius"`
	StartBookmark string  `yaml:"start_bookmark"`
}

// BookmarksConfig holds the bookmarks file settings.
type BookmarksConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:         1280,
			Height:        800,
			Fullscreen:    false,
			VSync:         true,
			ShowFPS:       false,
			ScreenshotDir: "screenshots",
		},
		VR: VRConfig{
			Transport:        TransportSim,
			IPDScale:         100,
			DiscoveryTimeout: 5 * time.Second,
			Near:             1,
			Far:              1e8,
			Sim: SimMotionConfig{
				YawDegrees:   0,
				PitchDegrees: 0,
				Period:       10 * time.Second,
			},
		},
		Movement: MovementConfig{
			ForwardSpeed:    250,
			StrafeSpeed:     150,
			BoostMultiplier: 2,
			DragSensitivity: 0.003,
		},
		Scene: SceneConfig{
			GlobeRadius: 6378137,
		},
		Bookmarks: BookmarksConfig{
			File:  "configs/bookmarks.yaml",
			Watch: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size %dx%d must be positive", c.Display.Width, c.Display.Height))
	}
	switch c.VR.Transport {
	case TransportSim, TransportNone:
	default:
		errs = append(errs, fmt.Errorf("unknown vr transport %q", c.VR.Transport))
	}
	if c.VR.IPDScale <= 0 {
		errs = append(errs, fmt.Errorf("vr ipd_scale %v must be positive", c.VR.IPDScale))
	}
	if c.VR.Near <= 0 || c.VR.Far <= c.VR.Near {
		errs = append(errs, fmt.Errorf("vr clip range [%v, %v] is invalid", c.VR.Near, c.VR.Far))
	}
	if c.VR.Profile != nil {
		if err := c.VR.Profile.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("vr profile: %w", err))
		}
	}
	if c.Movement.ForwardSpeed <= 0 || c.Movement.StrafeSpeed <= 0 {
		errs = append(errs, errors.New("movement speeds must be positive"))
	}
	if c.Scene.GlobeRadius <= 0 {
		errs = append(errs, fmt.Errorf("scene globe_radius %v must be positive", c.Scene.GlobeRadius))
	}
	return errors.Join(errs...)
}
