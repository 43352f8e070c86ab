// Package visual renders training progress: example input, output, label
// and gradient planes next to the train and test learning curves.
//
// Drawing goes through a Surface, an explicit display handle that the
// caller opens at startup and closes at shutdown. Every frame is drawn
// from scratch; nothing from the previous frame is overlaid.
package visual

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"znn/internal/logging"
)

// DefaultPause is how long Show blocks after drawing so that the display
// can refresh.
const DefaultPause = 1500 * time.Millisecond

// ErrClosed is returned by Show after Close.
var ErrClosed = errors.New("visualizer is closed")

// Surface is a display that can show one snapshot at a time.
type Surface interface {
	Draw(s *Snapshot) error
	Close() error
}

type Visualizer struct {
	mu      sync.Mutex
	surface Surface
	pause   time.Duration
	sleep   func(time.Duration)
	logger  *logging.Logger
	closed  bool
}

type Option func(*Visualizer)

func WithPause(d time.Duration) Option {
	return func(v *Visualizer) { v.pause = d }
}

func WithLogger(l *logging.Logger) Option {
	return func(v *Visualizer) { v.logger = l }
}

// New takes ownership of surface; Close releases it.
func New(surface Surface, opts ...Option) *Visualizer {
	v := &Visualizer{
		surface: surface,
		pause:   DefaultPause,
		sleep:   time.Sleep,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Show draws s and then blocks for the configured pause. Calls are
// serialized, so the surface never sees two frames at once.
func (v *Visualizer) Show(s *Snapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}

	start := time.Now()
	if err := v.surface.Draw(s); err != nil {
		return fmt.Errorf("failed to draw iteration %d: %w", s.Iter, err)
	}
	v.logger.Debug("Drew iteration %d in %v", s.Iter, time.Since(start))

	if v.pause > 0 {
		v.sleep(v.pause)
	}
	return nil
}

func (v *Visualizer) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	return v.surface.Close()
}

type tee []Surface

// Tee draws to every surface in order. A failing surface does not stop the
// others; the errors are joined.
func Tee(surfaces ...Surface) Surface {
	return tee(surfaces)
}

func (t tee) Draw(s *Snapshot) error {
	var errs []error
	for _, surface := range t {
		if err := surface.Draw(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t tee) Close() error {
	var errs []error
	for _, surface := range t {
		if err := surface.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
