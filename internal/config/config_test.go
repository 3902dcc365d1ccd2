package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/globevr/internal/vr/device"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Display.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Display.Width)
	}
	if cfg.Display.Height != 800 {
		t.Errorf("expected height 800, got %d", cfg.Display.Height)
	}
	if !cfg.Display.VSync {
		t.Error("expected vsync to be enabled by default")
	}
	if cfg.VR.Transport != TransportSim {
		t.Errorf("expected transport sim, got %s", cfg.VR.Transport)
	}
	if cfg.VR.IPDScale != 100 {
		t.Errorf("expected ipd scale 100, got %v", cfg.VR.IPDScale)
	}
	if cfg.VR.Profile != nil {
		t.Error("expected no profile override by default")
	}
	if cfg.Scene.GlobeRadius != 6378137 {
		t.Errorf("expected WGS84 radius, got %v", cfg.Scene.GlobeRadius)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
display:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

vr:
  transport: none
  ipd_scale: 2.5
  hold_last_orientation: true
  discovery_timeout: 2s
  profile:
    device_name: "Custom"
    resolution_horz: 1920
    resolution_vert: 1080
    screen_size_horz: 0.12
    screen_size_vert: 0.068
    screen_center_vert: 0.034
    eye_to_screen_distance: 0.04
    lens_separation_distance: 0.063
    interpupillary_distance: 0.064
  sim:
    yaw_degrees: 30
    period: 4s

movement:
  forward_speed: 1000

bookmarks:
  file: "places.yaml"
  watch: false

logging:
  level: "debug"
  log_file: "globevr.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Display.Width != 1920 || cfg.Display.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Display.Width, cfg.Display.Height)
	}
	if !cfg.Display.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Display.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.VR.Transport != TransportNone {
		t.Errorf("expected transport none, got %s", cfg.VR.Transport)
	}
	if cfg.VR.IPDScale != 2.5 {
		t.Errorf("expected ipd scale 2.5, got %v", cfg.VR.IPDScale)
	}
	if !cfg.VR.HoldLastOrientation {
		t.Error("expected hold_last_orientation to be true")
	}
	if cfg.VR.DiscoveryTimeout != 2*time.Second {
		t.Errorf("expected discovery timeout 2s, got %v", cfg.VR.DiscoveryTimeout)
	}
	if cfg.VR.Profile == nil || cfg.VR.Profile.DeviceName != "Custom" {
		t.Fatalf("expected custom profile, got %+v", cfg.VR.Profile)
	}
	if cfg.VR.Profile.ResolutionHorz != 1920 {
		t.Errorf("expected profile resolution 1920, got %d", cfg.VR.Profile.ResolutionHorz)
	}
	if cfg.VR.Sim.YawDegrees != 30 || cfg.VR.Sim.Period != 4*time.Second {
		t.Errorf("unexpected sim motion %+v", cfg.VR.Sim)
	}

	// Keys absent from the file keep their defaults.
	if cfg.Movement.ForwardSpeed != 1000 {
		t.Errorf("expected forward speed 1000, got %v", cfg.Movement.ForwardSpeed)
	}
	if cfg.Movement.StrafeSpeed != 150 {
		t.Errorf("expected default strafe speed 150, got %v", cfg.Movement.StrafeSpeed)
	}

	if cfg.Bookmarks.File != "places.yaml" || cfg.Bookmarks.Watch {
		t.Errorf("unexpected bookmarks config %+v", cfg.Bookmarks)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "globevr.log" {
		t.Errorf("expected log file 'globevr.log', got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
display:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
	if _, err := LoadFile("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected LoadFile to fail for a missing file")
	}
}

func TestLoadFileEmptyPath(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Display.Width != Default().Display.Width {
		t.Error("expected defaults for an empty path")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero width", func(c *Config) { c.Display.Width = 0 }, "display size"},
		{"negative height", func(c *Config) { c.Display.Height = -1 }, "display size"},
		{"unknown transport", func(c *Config) { c.VR.Transport = "serial" }, "unknown vr transport"},
		{"zero ipd", func(c *Config) { c.VR.IPDScale = 0 }, "ipd_scale"},
		{"far before near", func(c *Config) { c.VR.Far = 0.5 }, "clip range"},
		{"zero near", func(c *Config) { c.VR.Near = 0 }, "clip range"},
		{"bad profile", func(c *Config) { c.VR.Profile = &device.HMDInfo{} }, "vr profile"},
		{"zero speed", func(c *Config) { c.Movement.StrafeSpeed = 0 }, "speeds"},
		{"zero radius", func(c *Config) { c.Scene.GlobeRadius = 0 }, "globe_radius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Display.Width = 0
	cfg.VR.Transport = "serial"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "display size") || !strings.Contains(err.Error(), "serial") {
		t.Errorf("expected both problems reported, got %q", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("display:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Display.ShowFPS {
					t.Error("expected show_fps to be enabled with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "ipd flag",
			setup: func() { *flagIPD = 1.5 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.VR.IPDScale != 1.5 {
					t.Errorf("expected ipd scale 1.5, got %v", cfg.VR.IPDScale)
				}
			},
			teardown: func() { *flagIPD = 0 },
		},
		{
			name:  "transport flag",
			setup: func() { *flagTransport = TransportNone },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.VR.Transport != TransportNone {
					t.Errorf("expected transport none, got %s", cfg.VR.Transport)
				}
			},
			teardown: func() { *flagTransport = "" },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Display.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Display.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Display.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Display.Width)
				}
				if cfg.Display.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Display.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "bookmarks flag",
			setup: func() { *flagBookmarks = "/tmp/places.yaml" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Bookmarks.File != "/tmp/places.yaml" {
					t.Errorf("expected bookmarks override, got %s", cfg.Bookmarks.File)
				}
			},
			teardown: func() { *flagBookmarks = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
display:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Display.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Display.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Display.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Display.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	*flagConfig = ""
	*flagTransport = "serial"
	defer func() { *flagTransport = "" }()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if _, err := Load(); err == nil {
		t.Error("expected Load to reject an unknown transport")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.VR.IPDScale = 3
	dk1 := device.DK1()
	cfg.VR.Profile = &dk1
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.VR.IPDScale != 3 {
		t.Errorf("expected ipd scale 3 after round trip, got %v", loaded.VR.IPDScale)
	}
	if loaded.VR.Profile == nil || *loaded.VR.Profile != dk1 {
		t.Errorf("expected DK1 profile after round trip, got %+v", loaded.VR.Profile)
	}
}
