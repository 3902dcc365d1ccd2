package session

import (
	"fmt"
	"io"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/globevr/internal/bookmarks"
	"github.com/Faultbox/globevr/internal/engine/camera"
	"github.com/Faultbox/globevr/internal/logger"
	"github.com/Faultbox/globevr/internal/vr/headtrack"
	"github.com/Faultbox/globevr/internal/vr/rotation"
)

// StartPose returns the bookmark named key, or a view of the whole globe from three
// radii above longitude and latitude zero.
func StartPose(store *bookmarks.Store, key string, radius float64) camera.Pose {
	if store != nil && key != "" {
		if loc, ok := store.Lookup(key); ok {
			return loc.Pose
		}
	}
	return camera.NewPose(
		mgl64.Vec3{3 * radius, 0, 0},
		mgl64.Vec3{-1, 0, 0},
		mgl64.Vec3{0, 0, 1},
	)
}

// Actions are the commands only the host window can carry out.
type Actions interface {
	ToggleFullscreen() error
	Screenshot() error
	Quit()
}

// Controls applies input to the live camera. It runs on the frame goroutine between
// ticks.
type Controls struct {
	State      *State
	Look       *camera.FreeLook
	Integrator *rotation.Integrator
	Tracker    *headtrack.Tracker
	Bookmarks  *bookmarks.Store // may be nil
	Actions    Actions

	// Out receives the pose printed by CommandPrintPose.
	Out io.Writer

	log *zap.Logger
}

// NewControls wires the controls. Look defaults to camera.NewFreeLook.
func NewControls(s *State, in *rotation.Integrator, tr *headtrack.Tracker, store *bookmarks.Store, a Actions, out io.Writer) *Controls {
	return &Controls{
		State:      s,
		Look:       camera.NewFreeLook(),
		Integrator: in,
		Tracker:    tr,
		Bookmarks:  store,
		Actions:    a,
		Out:        out,
		log:        logger.Named("controls"),
	}
}

// KeyDown runs the command bound to key against cam. Unbound keys jump to the bookmark
// with the same name, if any.
func (c *Controls) KeyDown(cam *camera.Camera, key Key) error {
	cmd := c.State.KeyDown(key)
	switch cmd {
	case CommandLevel:
		if err := c.Integrator.Level(&cam.Pose); err != nil {
			return fmt.Errorf("leveling camera: %w", err)
		}
		c.log.Debug("camera leveled")
	case CommandRecenter:
		if !c.Tracker.Recenter() {
			c.log.Info("recenter skipped, no orientation available")
		}
	case CommandFullscreen:
		return c.Actions.ToggleFullscreen()
	case CommandScreenshot:
		return c.Actions.Screenshot()
	case CommandQuit:
		c.Actions.Quit()
	case CommandPrintPose:
		return c.printPose(cam.Pose)
	case CommandNone:
		c.jump(cam, key)
	}
	return nil
}

// KeyUp releases key.
func (c *Controls) KeyUp(key Key) {
	c.State.KeyUp(key)
}

// Drag turns the camera by a mouse drag in pixels.
func (c *Controls) Drag(cam *camera.Camera, dx, dy int) {
	c.Look.HandleDrag(&cam.Pose, float64(dx), float64(dy))
}

// Update moves the camera by the held movement keys over dt.
func (c *Controls) Update(cam *camera.Camera, dt time.Duration) {
	c.State.Move(&cam.Pose, dt)
}

// FocusLost releases all held keys.
func (c *Controls) FocusLost() {
	c.State.Stop()
}

func (c *Controls) jump(cam *camera.Camera, key Key) {
	if c.Bookmarks == nil {
		return
	}
	loc, ok := c.Bookmarks.Lookup(string(key))
	if !ok {
		return
	}
	c.Integrator.Teleport(&cam.Pose, loc.Pose)
	c.log.Info("jumped to bookmark", zap.String("key", loc.Key), zap.String("name", loc.Name))
}

// printPose writes the pose as a bookmark entry ready to paste into a bookmarks file.
func (c *Controls) printPose(p camera.Pose) error {
	if c.Out == nil {
		return nil
	}
	data, err := bookmarks.Marshal(bookmarks.Location{Key: "?", Name: "Saved view", Pose: p})
	if err != nil {
		return err
	}
	_, err = c.Out.Write(data)
	return err
}
