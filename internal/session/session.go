// Package session ties a view state to the volumes and the resampler. It
// caches decoded volumes and skips re-rendering when the state has not
// changed since the previous frame.
package session

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"

	"volslice/internal/logging"
	"volslice/internal/models"
	"volslice/pkg/plane"
	"volslice/pkg/resample"
	"volslice/pkg/source"
	"volslice/pkg/volume"
)

// ErrUnknownDataset is returned when no volume is configured for a dataset.
var ErrUnknownDataset = errors.New("unknown dataset")

// Loader produces the volume backing a dataset.
type Loader func(d models.Dataset) (*volume.Volume, error)

// FileLoader loads datasets from the PVM files named in paths, keyed by
// dataset name.
func FileLoader(paths map[string]string) Loader {
	return func(d models.Dataset) (*volume.Volume, error) {
		path, ok := paths[d.String()]
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, d)
		}
		return source.Open(path)
	}
}

// Frame is one rendered slice. Pixels must not be modified; a frame may be
// handed to several callers.
type Frame struct {
	State  State
	Width  int
	Height int
	Plane  plane.Plane
	Pixels []color.RGBA
}

// Image converts the frame to an image with the plane's bottom row at the
// bottom.
func (f *Frame) Image() (*image.RGBA, error) {
	return resample.ToImage(f.Pixels, f.Width, f.Height)
}

// Bytes returns the frame as packed RGBA, width*4 bytes per row.
func (f *Frame) Bytes() []byte {
	return resample.Pack(f.Pixels)
}

// Session renders states. It is safe for concurrent use.
type Session struct {
	load      Loader
	resampler *resample.Resampler

	// loading collapses concurrent loads of one dataset; loads run without mu
	loading singleflight.Group

	mu     sync.Mutex
	cache  *lru.Cache
	last   *Frame
	loads  int
	reused int
}

// New returns a session keeping up to cacheSize decoded volumes.
func New(load Loader, r *resample.Resampler, cacheSize int) *Session {
	if cacheSize < 1 {
		cacheSize = 1
	}
	s := &Session{
		load:      load,
		resampler: r,
		cache:     lru.New(cacheSize),
	}
	s.cache.OnEvicted = func(key lru.Key, _ interface{}) {
		logging.Debugf("evicted volume %v from cache", key)
	}
	return s
}

// Volume returns the decoded volume for d, loading it on first use. A load
// does not hold the session lock, so renders of cached datasets proceed
// while another dataset is read.
func (s *Session) Volume(d models.Dataset) (*volume.Volume, error) {
	if vol, ok := s.cached(d); ok {
		return vol, nil
	}
	v, err, _ := s.loading.Do(d.String(), func() (interface{}, error) {
		if vol, ok := s.cached(d); ok {
			return vol, nil
		}
		vol, err := s.load(d)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.loads++
		s.cache.Add(d, vol)
		s.mu.Unlock()
		logging.Infof("loaded dataset %s: %s, %d components", d, vol.Extents(), vol.Components())
		return vol, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", d, err)
	}
	return v.(*volume.Volume), nil
}

func (s *Session) cached(d models.Dataset) (*volume.Volume, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(d); ok {
		return v.(*volume.Volume), true
	}
	return nil, false
}

// Render returns the frame for st at width x height. When st and the size
// match the previous frame, that frame is returned without resampling.
func (s *Session) Render(st State, width, height int) (*Frame, error) {
	s.mu.Lock()
	if f := s.last; f != nil && f.State == st && f.Width == width && f.Height == height {
		s.reused++
		s.mu.Unlock()
		return f, nil
	}
	s.mu.Unlock()

	vol, err := s.Volume(st.Dataset)
	if err != nil {
		return nil, err
	}
	p, err := plane.Build(vol.Extents(), st.Params)
	if err != nil {
		return nil, err
	}
	pixels, err := s.resampler.Slice(vol, p, width, height)
	if err != nil {
		return nil, err
	}
	f := &Frame{State: st, Width: width, Height: height, Plane: p, Pixels: pixels}

	s.mu.Lock()
	s.last = f
	s.mu.Unlock()
	logging.Debugf("rendered %s at %dx%d", st, width, height)
	return f, nil
}

// Counters reports how many volumes were loaded and how many renders reused
// the previous frame.
func (s *Session) Counters() (loads, reused int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads, s.reused
}
