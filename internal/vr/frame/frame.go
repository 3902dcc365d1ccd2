// Package frame sequences one stereo render tick: head rotation, right eye, copy, left eye
// and restore.
package frame

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/globevr/internal/engine/camera"
	"github.com/Faultbox/globevr/internal/engine/surface"
	"github.com/Faultbox/globevr/internal/logger"
	"github.com/Faultbox/globevr/internal/vr/device"
)

// ErrStop is returned by a Scheduler to end Run cleanly.
var ErrStop = errors.New("stop")

// Renderer draws the scene from its live camera into its surface.
type Renderer interface {
	Camera() *camera.Camera
	Render() error
	Surface() surface.Surface
}

// Copier copies a rendered eye into the other eye's display surface.
type Copier interface {
	Copy(src surface.Surface) error
}

// Scheduler blocks until the next tick is due.
type Scheduler interface {
	Next(ctx context.Context) error
}

// Orientation reads the head orientation.
type Orientation interface {
	Read() mgl64.Quat
}

// Integrator applies head orientation to a camera pose.
type Integrator interface {
	Apply(pose camera.Pose, q mgl64.Quat) camera.Pose
}

// Rig configures per-eye cameras.
type Rig interface {
	ConfigureEye(master camera.Camera, eye device.Eye) camera.Camera
}

// Config wires a Controller. Copier may be nil when each eye has its own target.
type Config struct {
	Tracker    Orientation
	Integrator Integrator
	Rig        Rig
	Renderer   Renderer
	Copier     Copier

	// OnError receives tick errors during Run. Defaults to logging.
	OnError func(error)
}

// Stats counts rendered and failed ticks.
type Stats struct {
	Frames uint64
	Errors uint64
}

// Controller runs stereo ticks. It is not safe for concurrent use.
type Controller struct {
	cfg   Config
	stats Stats
}

// New validates cfg and creates a controller.
func New(cfg Config) (*Controller, error) {
	switch {
	case cfg.Tracker == nil:
		return nil, errors.New("frame: tracker is required")
	case cfg.Integrator == nil:
		return nil, errors.New("frame: integrator is required")
	case cfg.Rig == nil:
		return nil, errors.New("frame: rig is required")
	case cfg.Renderer == nil:
		return nil, errors.New("frame: renderer is required")
	}
	if cfg.OnError == nil {
		cfg.OnError = logger.Reporter("frame")
	}
	return &Controller{cfg: cfg}, nil
}

// Tick renders one stereo frame. The live camera is always restored to the un-offset
// master pose before returning, even when rendering fails.
func (c *Controller) Tick() (err error) {
	cam := c.cfg.Renderer.Camera()

	q := c.cfg.Tracker.Read()
	cam.Pose = c.cfg.Integrator.Apply(cam.Pose, q)
	master := cam.Clone()

	defer func() {
		cam.Set(c.cfg.Rig.ConfigureEye(master, device.EyeMono))
		if err != nil {
			c.stats.Errors++
		} else {
			c.stats.Frames++
		}
	}()

	cam.Set(c.cfg.Rig.ConfigureEye(master, device.EyeRight))
	if err := c.cfg.Renderer.Render(); err != nil {
		return fmt.Errorf("rendering right eye: %w", err)
	}
	if c.cfg.Copier != nil {
		if err := c.cfg.Copier.Copy(c.cfg.Renderer.Surface()); err != nil {
			return fmt.Errorf("copying right eye: %w", err)
		}
	}

	cam.Set(c.cfg.Rig.ConfigureEye(master, device.EyeLeft))
	if err := c.cfg.Renderer.Render(); err != nil {
		return fmt.Errorf("rendering left eye: %w", err)
	}
	return nil
}

// Run ticks until ctx is done or the scheduler returns an error. ErrStop ends Run with nil.
// Tick errors are reported and do not stop the loop.
func (c *Controller) Run(ctx context.Context, s Scheduler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Tick(); err != nil {
			c.cfg.OnError(err)
		}
		if err := s.Next(ctx); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

// Stats returns the tick counters.
func (c *Controller) Stats() Stats {
	return c.stats
}
