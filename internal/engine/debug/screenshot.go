// Package debug provides debug capture utilities.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// ScreenshotCapture handles screenshot capture functionality.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	now       func() time.Time

	last  string
	count int
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// CaptureFromImage saves img as a PNG and returns its path. tag, if not empty, is
// appended to the name, e.g. "left" for a single eye.
func (sc *ScreenshotCapture) CaptureFromImage(img image.Image, tag string) (string, error) {
	// Create output directory if needed
	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := sc.GenerateFilename(tag)

	// Save to file
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	return filename, nil
}

// GenerateFilename generates a screenshot filename without saving. Names generated
// within the same second get a counter suffix.
func (sc *ScreenshotCapture) GenerateFilename(tag string) string {
	timestamp := sc.now().Format("2006-01-02_15-04-05")
	if timestamp == sc.last {
		sc.count++
	} else {
		sc.last, sc.count = timestamp, 0
	}

	name := sc.prefix + "_" + timestamp
	if sc.count > 0 {
		name += fmt.Sprintf("-%d", sc.count)
	}
	if tag != "" {
		name += "_" + tag
	}
	name += ".png"

	if sc.outputDir != "" {
		name = filepath.Join(sc.outputDir, name)
	}
	return name
}
