// Package app implements the stereo viewer host: window, input and the frame loop.
package app

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/globevr/internal/bookmarks"
	"github.com/Faultbox/globevr/internal/config"
	"github.com/Faultbox/globevr/internal/engine/camera"
	"github.com/Faultbox/globevr/internal/engine/debug"
	"github.com/Faultbox/globevr/internal/engine/framebuffer"
	"github.com/Faultbox/globevr/internal/engine/input"
	"github.com/Faultbox/globevr/internal/engine/renderer"
	"github.com/Faultbox/globevr/internal/engine/window"
	"github.com/Faultbox/globevr/internal/logger"
	"github.com/Faultbox/globevr/internal/session"
	"github.com/Faultbox/globevr/internal/vr/frame"
	"github.com/Faultbox/globevr/internal/vr/headset"
	"github.com/Faultbox/globevr/internal/vr/rotation"
)

const title = "GlobeVR"

// App is the viewer instance.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	headset    *headset.Headset
	controller *frame.Controller
	state      *session.State
	controls   *session.Controls

	store   *bookmarks.Store
	watched bool

	left, right *framebuffer.Blitter
	screenshots *debug.ScreenshotCapture

	running    bool
	shotQueued bool
	dragging   bool
	lastFrame  time.Time
	titleAt    time.Time
}

// New creates the window, connects the headset and builds the frame pipeline.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:         cfg,
		log:         logger.Named("app"),
		input:       input.New(),
		screenshots: debug.NewScreenshotCapture(cfg.Display.ScreenshotDir, "globevr"),
	}

	a.log.Info("initializing viewer",
		zap.Int("width", cfg.Display.Width),
		zap.Int("height", cfg.Display.Height),
		zap.String("transport", cfg.VR.Transport),
	)

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Display.Width,
		Height:     cfg.Display.Height,
		Fullscreen: cfg.Display.Fullscreen,
		VSync:      cfg.Display.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.store = a.loadBookmarks()

	transport, err := headset.NewTransport(cfg.VR)
	if err != nil {
		a.window.Close()
		return nil, err
	}
	aspect := float64(cfg.Display.Width) / 2 / float64(cfg.Display.Height)
	a.headset, err = headset.Connect(context.Background(), cfg.VR, transport, aspect, a.reportError)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to connect headset: %w", err)
	}

	cam := camera.New(session.StartPose(a.store, cfg.Scene.StartBookmark, cfg.Scene.GlobeRadius))
	cam.Frustum.Near = cfg.VR.Near
	cam.Frustum.Far = cfg.VR.Far

	// Create renderer (AFTER window, since OpenGL context must exist)
	dw, dh := a.window.GetDrawableSize()
	eyeW, eyeH, _ := a.headset.EyeSize(dw, dh)
	a.renderer, err = renderer.New(cam, renderer.Config{
		Width:       eyeW,
		Height:      eyeH,
		GlobeRadius: cfg.Scene.GlobeRadius,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.left = framebuffer.NewBlitter(0, image.Rect(0, 0, dw/2, dh), dh)
	a.right = framebuffer.NewBlitter(0, image.Rect(dw/2, 0, dw, dh), dh)

	integrator := rotation.New()
	a.controller, err = frame.New(frame.Config{
		Tracker:    a.headset.Tracker,
		Integrator: integrator,
		Rig:        a.headset.Rig,
		Renderer:   a.renderer,
		Copier:     a.right,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.state = session.New(session.Movement{
		ForwardSpeed:    cfg.Movement.ForwardSpeed,
		StrafeSpeed:     cfg.Movement.StrafeSpeed,
		BoostMultiplier: cfg.Movement.BoostMultiplier,
	}, nil)
	a.controls = session.NewControls(a.state, integrator, a.headset.Tracker, a.store, a, os.Stdout)
	a.controls.Look.DragSensitivity = cfg.Movement.DragSensitivity

	a.log.Info("viewer initialized successfully")
	return a, nil
}

// loadBookmarks reads the bookmarks file. A missing or broken file leaves an empty store.
func (a *App) loadBookmarks() *bookmarks.Store {
	path := a.cfg.Bookmarks.File
	if path == "" {
		return bookmarks.New()
	}
	store, err := bookmarks.Load(path)
	if err != nil {
		a.log.Warn("bookmarks unavailable", zap.String("path", path), zap.Error(err))
		return bookmarks.New()
	}
	a.watched = a.cfg.Bookmarks.Watch
	return store
}

// reportError logs err and shows it to the user.
func (a *App) reportError(err error) {
	a.log.Error("vr error", zap.Error(err))
	a.window.ShowError(title, fmt.Sprintf("%v\n\nContinuing with the %s profile and no head tracking.",
		err, headset.Profile(a.cfg.VR).DeviceName))
}

// Run starts the frame loop and blocks until the viewer quits.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.watched {
		go func() {
			if err := a.store.Watch(ctx, nil); err != nil {
				a.log.Warn("bookmarks watch stopped", zap.Error(err))
			}
		}()
	}

	a.running = true
	a.lastFrame = time.Now()
	a.titleAt = a.lastFrame

	a.log.Info("starting frame loop")
	err := a.controller.Run(ctx, a)

	stats := a.controller.Stats()
	a.log.Info("frame loop stopped",
		zap.Uint64("frames", stats.Frames),
		zap.Uint64("errors", stats.Errors),
	)
	return err
}

// Next presents the finished frame, processes input and moves the camera. It paces
// the loop through the swap interval.
func (a *App) Next(ctx context.Context) error {
	if err := a.present(); err != nil {
		a.log.Warn("present failed", zap.Error(err))
	}
	a.window.SwapBuffers()

	now := time.Now()
	dt := now.Sub(a.lastFrame)
	a.lastFrame = now
	a.updateTitle(now, a.state.FPS.Update(now))

	if a.input.Update() {
		a.running = false
	}
	a.handleEvents()
	if !a.running {
		return frame.ErrStop
	}

	a.controls.Update(a.renderer.Camera(), dt)
	return ctx.Err()
}

// present copies the left eye into the window. The right eye was copied during the tick.
func (a *App) present() error {
	if err := a.left.Copy(a.renderer.Surface()); err != nil {
		return err
	}
	if a.shotQueued {
		a.shotQueued = false
		dw, dh := a.window.GetDrawableSize()
		img := framebuffer.ReadWindow(image.Rect(0, 0, dw, dh), dh)
		path, err := a.screenshots.CaptureFromImage(img, "stereo")
		if err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		a.log.Info("screenshot saved", zap.String("path", path))
	}
	return nil
}

func (a *App) handleEvents() {
	cam := a.renderer.Camera()
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			a.resize()
		case input.EventFocusLost:
			a.controls.FocusLost()
			a.dragging = false
		case input.EventKeyDown:
			if ev.Repeat {
				continue
			}
			if err := a.controls.KeyDown(cam, session.Key(ev.Name)); err != nil {
				a.log.Warn("command failed", zap.String("key", ev.Name), zap.Error(err))
			}
		case input.EventKeyUp:
			a.controls.KeyUp(session.Key(ev.Name))
		case input.EventMouseDown:
			if ev.Button == sdl.BUTTON_LEFT {
				a.dragging = true
			}
		case input.EventMouseUp:
			if ev.Button == sdl.BUTTON_LEFT {
				a.dragging = false
			}
		case input.EventMouseMove:
			if a.dragging {
				a.controls.Drag(cam, ev.XRel, ev.YRel)
			}
		}
	}
}

// resize splits the window between the eyes again and, unless the headset fixes
// the eye size, resizes the eye target to match.
func (a *App) resize() {
	dw, dh := a.window.GetDrawableSize()
	a.left.SetRect(image.Rect(0, 0, dw/2, dh), dh)
	a.right.SetRect(image.Rect(dw/2, 0, dw, dh), dh)
	a.log.Debug("window resized", zap.Int("width", dw), zap.Int("height", dh))

	if w, h, fixed := a.headset.EyeSize(dw, dh); !fixed {
		if err := a.renderer.Resize(w, h); err != nil {
			a.log.Error("eye target resize failed", zap.Error(err))
		}
	}
}

func (a *App) updateTitle(now time.Time, fps float64) {
	if !a.cfg.Display.ShowFPS || now.Sub(a.titleAt) < time.Second {
		return
	}
	a.titleAt = now
	a.window.SetTitle(fmt.Sprintf("%s - %s - %.0f fps", title, a.headset.HMD.Name, fps))
	a.log.Debug("fps", zap.Float64("fps", fps))
}

// ToggleFullscreen switches fullscreen and re-splits the window.
func (a *App) ToggleFullscreen() error {
	if err := a.window.ToggleFullscreen(); err != nil {
		return err
	}
	a.resize()
	return nil
}

// Screenshot saves the next presented frame.
func (a *App) Screenshot() error {
	a.shotQueued = true
	return nil
}

// Quit ends the frame loop after the current frame.
func (a *App) Quit() {
	a.running = false
}

// Close cleans up viewer resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
