// Package renderer draws the fabric, the star field and the mass visuals.
// A backend is chosen once at startup by probing the host: the windowed 3D
// scene is preferred, the terminal canvas is the fallback.
package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/spacetime/camera"
	"github.com/pthm-cable/spacetime/config"
	"github.com/pthm-cable/spacetime/field"
	"github.com/pthm-cable/spacetime/loop"
)

var (
	// ErrNoMount means no display surface exists; the process declines to start.
	ErrNoMount = errors.New("no display surface available")
	// ErrUnavailable means a backend's host capability is missing or failed to initialize.
	ErrUnavailable = errors.New("backend unavailable")
)

// Backend names.
const (
	NameScene    = "scene"
	NameCanvas   = "canvas"
	NameHeadless = "headless"
	NameAuto     = "auto"
)

// Backend is a render surface. It observes the field model so per-mass
// visuals are created and released in the same step as the mass.
type Backend interface {
	loop.Surface
	field.Observer

	Name() string
	// Mapper converts pointer positions on this surface to fabric positions.
	Mapper() camera.Mapper
	// Viewport returns the surface size at startup.
	Viewport() loop.Viewport
	// Profile returns the lattice, star and lensing constants for this surface.
	Profile() config.Profile
	// Close releases every surface resource. It is safe to call once.
	Close() error
}

// Candidate is one backend the factory may try.
type Candidate struct {
	Name string
	// Probe checks the host capability without side effects. nil means always available.
	Probe func() error
	Open  func() (Backend, error)
}

// Options select and configure backends.
type Options struct {
	Backend string // auto, scene, canvas or headless
	Reduced bool   // Reduced motion, shown in the HUD
}

// Candidates returns the backends to try, in preference order.
func Candidates(cfg *config.Config, opts Options) ([]Candidate, error) {
	scene := Candidate{
		Name:  NameScene,
		Probe: probeDisplay,
		Open: func() (Backend, error) {
			s, err := OpenScene(cfg, opts)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
	canvas := Candidate{
		Name:  NameCanvas,
		Probe: probeTerminal,
		Open: func() (Backend, error) {
			c, err := OpenCanvas(cfg)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
	headless := Candidate{
		Name: NameHeadless,
		Open: func() (Backend, error) { return NewHeadless(cfg), nil },
	}

	switch opts.Backend {
	case "", NameAuto:
		return []Candidate{scene, canvas}, nil
	case NameScene:
		return []Candidate{scene}, nil
	case NameCanvas:
		return []Candidate{canvas}, nil
	case NameHeadless:
		return []Candidate{headless}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want auto, scene, canvas or headless)", opts.Backend)
	}
}

// Select opens the first candidate whose probe passes and whose construction
// succeeds. Failures fall through to the next candidate. When nothing opens
// the error wraps ErrNoMount. Nothing is logged once a backend is open, since
// the canvas owns stdout from then on.
func Select(candidates []Candidate) (Backend, error) {
	for _, c := range candidates {
		if c.Probe != nil {
			if err := c.Probe(); err != nil {
				slog.Info("backend unavailable", "backend", c.Name, "reason", err)
				continue
			}
		}

		b, err := open(c)
		if err != nil {
			slog.Warn("backend failed, falling back", "backend", c.Name, "reason", err)
			continue
		}

		return b, nil
	}
	return nil, fmt.Errorf("%w: tried %d backend(s)", ErrNoMount, len(candidates))
}

// open constructs a backend, converting errors and panics into ErrUnavailable.
func open(c Candidate) (b Backend, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("%w: %s panicked: %v", ErrUnavailable, c.Name, r)
		}
	}()

	b, err = c.Open()
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s returned no backend", ErrUnavailable, c.Name)
	}
	return b, nil
}
