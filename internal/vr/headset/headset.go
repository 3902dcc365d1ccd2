// Package headset connects to a head-mounted display and assembles the tracker and
// stereo rig for it, falling back to a default profile when none is found.
package headset

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/globevr/internal/config"
	"github.com/Faultbox/globevr/internal/logger"
	"github.com/Faultbox/globevr/internal/vr/device"
	"github.com/Faultbox/globevr/internal/vr/device/sim"
	"github.com/Faultbox/globevr/internal/vr/headtrack"
	"github.com/Faultbox/globevr/internal/vr/stereo"
)

// Headset is everything the frame loop needs from the device layer.
type Headset struct {
	HMD     *device.HMD
	Rig     *stereo.Rig
	Tracker *headtrack.Tracker

	// Degraded is set when no headset or sensor was found and defaults are in use.
	Degraded bool
}

// Profile returns the configured profile override, or the DK1.
func Profile(vr config.VRConfig) device.HMDInfo {
	if vr.Profile != nil {
		return *vr.Profile
	}
	return device.DK1()
}

// NewTransport returns the transport named by vr.Transport.
func NewTransport(vr config.VRConfig) (device.Transport, error) {
	switch vr.Transport {
	case config.TransportSim:
		motion := sim.Still()
		if vr.Sim.YawDegrees != 0 || vr.Sim.PitchDegrees != 0 {
			motion = sim.Sweep(vr.Sim.YawDegrees, vr.Sim.PitchDegrees, vr.Sim.Period)
		}
		return sim.New(sim.WithProfile(Profile(vr)), sim.WithMotion(motion)), nil
	case config.TransportNone:
		return device.None{}, nil
	default:
		return nil, fmt.Errorf("unknown vr transport %q", vr.Transport)
	}
}

// DiscoveryContext bounds ctx by vr.DiscoveryTimeout. A timeout of zero or less
// means no limit.
func DiscoveryContext(ctx context.Context, vr config.VRConfig) (context.Context, context.CancelFunc) {
	if vr.DiscoveryTimeout > 0 {
		return context.WithTimeout(ctx, vr.DiscoveryTimeout)
	}
	return context.WithCancel(ctx)
}

// Connect discovers a headset on t and builds its tracker and rig. Discovery failures
// are passed to onError once and do not fail Connect: the configured profile is used
// with an identity orientation instead. fallbackAspect is used for eyes without a
// render rectangle.
func Connect(ctx context.Context, vr config.VRConfig, t device.Transport, fallbackAspect float64, onError func(error)) (*Headset, error) {
	if onError == nil {
		onError = logger.Reporter("headset")
	}
	log := logger.Named("headset")

	ctx, cancel := DiscoveryContext(ctx, vr)
	defer cancel()

	sel, err := device.Discover(ctx, t).Wait(ctx)
	h := &Headset{HMD: sel.HMD}
	if err != nil {
		onError(fmt.Errorf("headset discovery: %w", err))
		h.Degraded = true
	}
	if h.HMD == nil {
		h.HMD = Profile(vr).HMD("default")
	}

	var sensor device.Sensor
	if sel.Sensor != nil {
		sensor = sel.Sensor.Sensor
	}
	h.Tracker = headtrack.New(sensor, headtrack.HoldLast(vr.HoldLastOrientation))

	h.Rig, err = stereo.FromHMD(h.HMD,
		stereo.WithIPDScale(vr.IPDScale),
		stereo.WithFallbackAspect(fallbackAspect),
	)
	if err != nil {
		return nil, fmt.Errorf("building stereo rig for %s: %w", h.HMD.Name, err)
	}

	log.Info("headset ready",
		zap.String("device", h.HMD.Name),
		zap.String("id", h.HMD.ID),
		zap.Bool("degraded", h.Degraded),
		zap.Float64("ipd_scale", h.Rig.IPDScale()),
	)
	return h, nil
}

// EyeSize returns the render target size for one eye when the window's drawable area
// is dw×dh. fixed is set when the headset reports its own render rectangle, which then
// wins over the window.
func (h *Headset) EyeSize(dw, dh int) (width, height int, fixed bool) {
	if r := h.HMD.Left.RenderRect; !r.Empty() {
		return r.Width, r.Height, true
	}
	return dw / 2, dh, false
}
