// Package tower implements the pan-tilt-laser controller: two angle
// actuators (base and top) plus an on/off laser output, addressed by
// GPIO channel.
package tower

import (
	"errors"
	"fmt"
	"math"

	"github.com/cjeanneret/LaserTower/internal/debug"
)

var (
	// ErrAngleRange reports an angle outside the documented domain.
	ErrAngleRange = errors.New("angle out of range")

	// ErrClosed reports an operation on a Tower after Close.
	ErrClosed = errors.New("tower is closed")
)

// Options configures Tower construction. Zero pin values and a nil
// pulse profile resolve from Defaults / DefaultPulseProfile at
// construction time (same zero-means-default idiom as Defaults.Override).
type Options struct {
	Defaults *Defaults // nil = built-in assignment
	BasePin  int
	TopPin   int
	LaserPin int
	Pulse    *PulseProfile
}

// Status describes the last commanded state of a Tower.
type Status struct {
	Pins      Pins    `json:"pins"`
	BaseAngle float64 `json:"base_angle"`
	TopAngle  float64 `json:"top_angle"`
	LaserOn   bool    `json:"laser_on"`
	Closed    bool    `json:"closed"`
}

// Tower owns exactly one base actuator, one top actuator and one laser
// output, each acquired at construction and released by Close.
//
// A Tower is meant to be driven by a single goroutine; it has no
// internal locking around handle writes.
type Tower struct {
	base  Actuator
	top   Actuator
	laser Output

	pins      Pins
	baseAngle float64
	topAngle  float64
	laserOn   bool
	closed    bool
}

// New acquires the three hardware handles through p. Any omitted pin
// resolves from opts.Defaults (built-ins when nil); a nil pulse profile
// resolves to DefaultPulseProfile. Acquisition failure is propagated
// after releasing whatever was already acquired.
func New(p Provider, opts Options) (*Tower, error) {
	defaults := opts.Defaults
	if defaults == nil {
		defaults = NewDefaults()
	}
	pins := defaults.Snapshot()
	if opts.BasePin > 0 {
		pins.Base = opts.BasePin
	}
	if opts.TopPin > 0 {
		pins.Top = opts.TopPin
	}
	if opts.LaserPin > 0 {
		pins.Laser = opts.LaserPin
	}

	pulse := DefaultPulseProfile()
	if opts.Pulse != nil {
		pulse = *opts.Pulse
	}

	debug.Verbose("Tower: acquiring handles (base=%d, top=%d, laser=%d)", pins.Base, pins.Top, pins.Laser)

	base, err := p.Actuator(pins.Base, pulse)
	if err != nil {
		return nil, fmt.Errorf("acquire base actuator on channel %d: %w", pins.Base, err)
	}
	top, err := p.Actuator(pins.Top, pulse)
	if err != nil {
		_ = base.Release()
		return nil, fmt.Errorf("acquire top actuator on channel %d: %w", pins.Top, err)
	}
	laser, err := p.Output(pins.Laser)
	if err != nil {
		_ = base.Release()
		_ = top.Release()
		return nil, fmt.Errorf("acquire laser output on channel %d: %w", pins.Laser, err)
	}

	return &Tower{
		base:  base,
		top:   top,
		laser: laser,
		pins:  pins,
	}, nil
}

// SetBaseAngle positions the base actuator. Valid domain is [0, 360]
// degrees, mapped linearly to a normalized value: value = angle/180 - 1.
// The 360-degree input domain onto the [-1,1] output range is the
// deployed mapping; keep the formula as is.
func (t *Tower) SetBaseAngle(angle float64) error {
	if t.closed {
		return ErrClosed
	}
	if math.IsNaN(angle) || angle < 0 || angle > 360 {
		return fmt.Errorf("%w: base angle must be between 0 and 360 degrees, got %g", ErrAngleRange, angle)
	}
	if err := t.base.SetValue(angle/180.0 - 1.0); err != nil {
		return fmt.Errorf("set base angle: %w", err)
	}
	t.baseAngle = angle
	debug.Live("Tower: base angle set to %g", angle)
	return nil
}

// SetTopAngle positions the top actuator. Valid domain is [0, 180]
// degrees, mapped via value = angle/90 - 1.
func (t *Tower) SetTopAngle(angle float64) error {
	if t.closed {
		return ErrClosed
	}
	if math.IsNaN(angle) || angle < 0 || angle > 180 {
		return fmt.Errorf("%w: top angle must be between 0 and 180 degrees, got %g", ErrAngleRange, angle)
	}
	if err := t.top.SetValue(angle/90.0 - 1.0); err != nil {
		return fmt.Errorf("set top angle: %w", err)
	}
	t.topAngle = angle
	debug.Live("Tower: top angle set to %g", angle)
	return nil
}

// LaserOn drives the laser output high.
func (t *Tower) LaserOn() error {
	if t.closed {
		return ErrClosed
	}
	if err := t.laser.On(); err != nil {
		return fmt.Errorf("laser on: %w", err)
	}
	t.laserOn = true
	debug.Live("Tower: laser on")
	return nil
}

// LaserOff drives the laser output low.
func (t *Tower) LaserOff() error {
	if t.closed {
		return ErrClosed
	}
	if err := t.laser.Off(); err != nil {
		return fmt.Errorf("laser off: %w", err)
	}
	t.laserOn = false
	debug.Live("Tower: laser off")
	return nil
}

// Status returns the last commanded state.
func (t *Tower) Status() Status {
	return Status{
		Pins:      t.pins,
		BaseAngle: t.baseAngle,
		TopAngle:  t.topAngle,
		LaserOn:   t.laserOn,
		Closed:    t.closed,
	}
}

// Pins returns the channel assignment acquired at construction.
func (t *Tower) Pins() Pins {
	return t.pins
}

// Close releases all three handles, best effort. A failure releasing
// one handle never blocks releasing the others and is never surfaced
// to the caller; it is only debug-logged. Calling Close again is a
// no-op. Angle and laser operations after Close return ErrClosed.
func (t *Tower) Close() {
	if t.closed {
		return
	}
	t.closed = true

	for name, release := range map[string]func() error{
		"base":  t.base.Release,
		"top":   t.top.Release,
		"laser": t.laser.Release,
	} {
		if err := release(); err != nil {
			debug.Error(fmt.Errorf("releasing %s handle: %w", name, err))
		}
	}
	debug.Info("Tower: closed")
}
