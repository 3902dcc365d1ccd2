// Package bookmarks stores named camera poses that input keys jump to.
package bookmarks

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/globevr/internal/engine/camera"
	"github.com/Faultbox/globevr/internal/logger"
)

// Location is a named camera pose.
type Location struct {
	Key  string
	Name string
	Pose camera.Pose
}

// entry is the file form of a location: either an explicit pose or a geodetic one.
type entry struct {
	Key       string    `yaml:"key"`
	Name      string    `yaml:"name"`
	Position  []float64 `yaml:"position,omitempty"`
	Direction []float64 `yaml:"direction,omitempty"`
	Up        []float64 `yaml:"up,omitempty"`
	Geodetic  *Geodetic `yaml:"geodetic,omitempty"`
}

type document struct {
	Locations []entry `yaml:"locations"`
}

// Parse decodes a bookmarks document.
func Parse(data []byte) ([]Location, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing bookmarks: %w", err)
	}

	seen := make(map[string]bool, len(doc.Locations))
	locs := make([]Location, 0, len(doc.Locations))
	for i, e := range doc.Locations {
		if e.Key == "" {
			return nil, fmt.Errorf("bookmark %d: missing key", i)
		}
		if seen[e.Key] {
			return nil, fmt.Errorf("bookmark %d: duplicate key %q", i, e.Key)
		}
		seen[e.Key] = true

		pose, err := e.pose()
		if err != nil {
			return nil, fmt.Errorf("bookmark %q: %w", e.Key, err)
		}
		locs = append(locs, Location{Key: e.Key, Name: e.Name, Pose: pose})
	}
	return locs, nil
}

// Marshal encodes locations in the form Parse reads, using explicit poses.
func Marshal(locs ...Location) ([]byte, error) {
	doc := document{Locations: make([]entry, 0, len(locs))}
	for _, l := range locs {
		p := l.Pose
		doc.Locations = append(doc.Locations, entry{
			Key:       l.Key,
			Name:      l.Name,
			Position:  p.Position[:],
			Direction: p.Direction[:],
			Up:        p.Up[:],
		})
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding bookmarks: %w", err)
	}
	return data, nil
}

func (e entry) pose() (camera.Pose, error) {
	if e.Geodetic != nil {
		return e.Geodetic.Pose()
	}

	pos, err := vec3(e.Position, "position")
	if err != nil {
		return camera.Pose{}, err
	}
	dir, err := vec3(e.Direction, "direction")
	if err != nil {
		return camera.Pose{}, err
	}
	up, err := vec3(e.Up, "up")
	if err != nil {
		return camera.Pose{}, err
	}
	if dir.Cross(up).Len() < 1e-9 {
		return camera.Pose{}, errors.New("direction and up must not be parallel")
	}
	return camera.NewPose(pos, dir, up), nil
}

func vec3(v []float64, name string) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%s needs 3 components, got %d", name, len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

// Store is a concurrency-safe set of locations keyed by input key.
type Store struct {
	mu    sync.RWMutex
	locs  map[string]Location
	order []string

	path string
	log  *zap.Logger
}

// New creates an in-memory store.
func New(locs ...Location) *Store {
	s := &Store{log: logger.Named("bookmarks")}
	s.replace(locs)
	return s
}

// Load reads a store from a YAML file.
func Load(path string) (*Store, error) {
	s := New()
	s.path = path
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the backing file. On error the current contents are kept.
func (s *Store) Reload() error {
	if s.path == "" {
		return errors.New("bookmarks: store has no backing file")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading bookmarks: %w", err)
	}
	locs, err := Parse(data)
	if err != nil {
		return err
	}
	s.replace(locs)
	s.log.Info("bookmarks loaded", zap.String("path", s.path), zap.Int("count", len(locs)))
	return nil
}

func (s *Store) replace(locs []Location) {
	m := make(map[string]Location, len(locs))
	order := make([]string, 0, len(locs))
	for _, l := range locs {
		if _, dup := m[l.Key]; !dup {
			order = append(order, l.Key)
		}
		m[l.Key] = l
	}

	s.mu.Lock()
	s.locs = m
	s.order = order
	s.mu.Unlock()
}

// Lookup returns the location bound to key.
func (s *Store) Lookup(key string) (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locs[key]
	return l, ok
}

// Keys returns the bound keys in file order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of locations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.locs)
}
