// vrprobe inspects headset discovery and runs the stereo pipeline without a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/globevr/internal/config"
	"github.com/Faultbox/globevr/internal/engine/camera"
	"github.com/Faultbox/globevr/internal/engine/debug"
	"github.com/Faultbox/globevr/internal/engine/raster"
	"github.com/Faultbox/globevr/internal/engine/surface"
	"github.com/Faultbox/globevr/internal/logger"
	"github.com/Faultbox/globevr/internal/session"
	"github.com/Faultbox/globevr/internal/vr/device"
	"github.com/Faultbox/globevr/internal/vr/frame"
	"github.com/Faultbox/globevr/internal/vr/headset"
	"github.com/Faultbox/globevr/internal/vr/rotation"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "devices", "ls":
		cmdDevices(args)
	case "eyes":
		cmdEyes(args)
	case "run":
		cmdRun(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vrprobe - headset discovery and headless stereo rendering

Usage:
  vrprobe <command> [options]

Commands:
  devices   List devices found on the transport
  eyes      Show the stereo geometry derived for each eye
  run       Render stereo frames in software and save the last one

Common options:
  -config <file>      Config file (defaults apply without one)
  -transport <name>   sim or none
  -v                  Debug logging

Examples:
  vrprobe devices -transport sim
  vrprobe eyes -ipd 2.5
  vrprobe run -ticks 120 -yaw 30 -out shots`)
}

// common holds the options shared by all commands.
type common struct {
	configPath *string
	transport  *string
	verbose    *bool
}

func addCommon(fs *flag.FlagSet) common {
	return common{
		configPath: fs.String("config", "", "Path to config file"),
		transport:  fs.String("transport", "", "VR device transport (sim, none)"),
		verbose:    fs.Bool("v", false, "Enable debug logging"),
	}
}

// load reads the config and applies the common overrides.
func (c common) load() *config.Config {
	cfg, err := config.LoadFile(*c.configPath)
	if err != nil {
		fail(err)
	}
	if *c.transport != "" {
		cfg.VR.Transport = *c.transport
	}
	if *c.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fail(fmt.Errorf("invalid config: %w", err))
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fail(err)
	}
	return cfg
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdDevices(args []string) {
	fs := flag.NewFlagSet("devices", flag.ExitOnError)
	c := addCommon(fs)
	fs.Parse(args)

	cfg := c.load()
	defer logger.Sync()

	t, err := headset.NewTransport(cfg.VR)
	if err != nil {
		fail(err)
	}
	ctx, cancel := headset.DiscoveryContext(context.Background(), cfg.VR)
	defer cancel()

	devices, err := t.Enumerate(ctx)
	if err != nil {
		fail(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tID\tNAME")
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\t%s\n", kind(d), d.HardwareUnitID(), d.DeviceName())
	}
	w.Flush()

	sel, err := device.Select(devices)
	fmt.Println()
	switch {
	case sel.HMD == nil:
		fmt.Printf("Selected: none (%v)\n", err)
	case err != nil:
		fmt.Printf("Selected: %s without tracking (%v)\n", sel.HMD.Name, err)
	default:
		fmt.Printf("Selected: %s with sensor %s\n", sel.HMD.Name, sel.Sensor.Name)
	}
}

func kind(d device.Device) string {
	switch d.(type) {
	case *device.HMD:
		return "hmd"
	case *device.PositionSensor:
		return "sensor"
	default:
		return "other"
	}
}

func cmdEyes(args []string) {
	fs := flag.NewFlagSet("eyes", flag.ExitOnError)
	c := addCommon(fs)
	ipd := fs.Float64("ipd", 0, "Interpupillary distance scale")
	fs.Parse(args)

	cfg := c.load()
	defer logger.Sync()
	if *ipd > 0 {
		cfg.VR.IPDScale = *ipd
	}

	h := connect(cfg)

	fmt.Printf("Device:    %s (%s)\n", h.HMD.Name, h.HMD.ID)
	fmt.Printf("Degraded:  %v\n", h.Degraded)
	fmt.Printf("IPD scale: %g\n\n", h.Rig.IPDScale())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "EYE\tUP\tDOWN\tLEFT\tRIGHT\tASPECT\tFOV\tOFFSET X\tSHIFT\t")
	for _, eye := range []device.Eye{device.EyeLeft, device.EyeRight} {
		g, _ := h.Rig.Geometry(eye)
		fov := g.FieldOfView
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.4f\t%.2f\t%+.4f\t%+.4f\t\n",
			eye, fov.Up, fov.Down, fov.Left, fov.Right,
			g.AspectRatio, mgl64.RadToDeg(g.Fov()), g.Offset.X(), g.Translation*h.Rig.IPDScale())
	}
	w.Flush()
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	c := addCommon(fs)
	ticks := fs.Int("ticks", 60, "Number of stereo frames to render")
	fps := fs.Float64("fps", 60, "Frame rate")
	yaw := fs.Float64("yaw", 0, "Simulated head yaw amplitude in degrees")
	scale := fs.Int("scale", 4, "Divide the eye resolution by this factor")
	out := fs.String("out", "", "Directory for the final stereo frame (empty = don't save)")
	fs.Parse(args)

	cfg := c.load()
	defer logger.Sync()
	if *yaw != 0 {
		cfg.VR.Sim.YawDegrees = *yaw
	}
	div := max(*scale, 1)
	rate := *fps
	if rate <= 0 {
		rate = 60
	}

	h := connect(cfg)

	eyeW, eyeH := 640, 800
	if r := h.HMD.Left.RenderRect; !r.Empty() {
		eyeW, eyeH = r.Width, r.Height
	}
	eyeW, eyeH = eyeW/div, eyeH/div

	cam := camera.New(session.StartPose(nil, "", cfg.Scene.GlobeRadius))
	cam.Frustum.Near = cfg.VR.Near
	cam.Frustum.Far = cfg.VR.Far
	r := raster.New(cam, eyeW, eyeH, cfg.Scene.GlobeRadius)

	display := surface.NewImage(2*eyeW, eyeH)
	left := surface.NewImageCopier(display, image.Rect(0, 0, eyeW, eyeH))
	right := surface.NewImageCopier(display, image.Rect(eyeW, 0, 2*eyeW, eyeH))

	ctrl, err := frame.New(frame.Config{
		Tracker:    h.Tracker,
		Integrator: rotation.New(),
		Rig:        h.Rig,
		Renderer:   r,
		Copier:     right,
	})
	if err != nil {
		fail(err)
	}

	ticker := frame.NewTickerScheduler(time.Duration(float64(time.Second)/rate))
	defer ticker.Stop()

	start := time.Now()
	if err := ctrl.Run(context.Background(), frame.Limit(ticker, *ticks)); err != nil {
		fail(err)
	}
	elapsed := time.Since(start)

	if err := left.Copy(r.Surface()); err != nil {
		fail(err)
	}

	stats := ctrl.Stats()
	fmt.Printf("Frames:  %d (%d errors) in %v\n", stats.Frames, stats.Errors, elapsed.Round(time.Millisecond))
	fmt.Printf("Eye:     %dx%d, %d segments drawn in the last eye\n", eyeW, eyeH, r.Drawn())
	fmt.Printf("Camera:  position %v\n", cam.Pose.Position)
	fmt.Printf("         direction %v up %v\n", cam.Pose.Direction, cam.Pose.Up)

	if *out != "" {
		path, err := debug.NewScreenshotCapture(*out, "vrprobe").CaptureFromImage(display, "stereo")
		if err != nil {
			fail(err)
		}
		fmt.Printf("Saved:   %s\n", path)
	}
}

func connect(cfg *config.Config) *headset.Headset {
	t, err := headset.NewTransport(cfg.VR)
	if err != nil {
		fail(err)
	}
	h, err := headset.Connect(context.Background(), cfg.VR, t, 1, func(err error) {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	})
	if err != nil {
		fail(err)
	}
	return h
}
