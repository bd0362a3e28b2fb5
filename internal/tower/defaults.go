package tower

// Built-in channel assignment (BCM numbering on the reference deployment).
const (
	DefaultBasePin  = 23
	DefaultTopPin   = 24
	DefaultLaserPin = 17
)

// Pins holds the channel assignment for the three devices.
type Pins struct {
	Base  int
	Top   int
	Laser int
}

// Defaults is a default-provider for channel assignments. A Tower
// constructed without explicit pins reads from one of these; overrides
// affect only Towers constructed afterwards.
//
// Defaults is not synchronized: callers must serialize Override against
// Tower construction.
type Defaults struct {
	pins Pins
}

// NewDefaults returns a default-provider with the built-in assignment.
func NewDefaults() *Defaults {
	return &Defaults{pins: Pins{
		Base:  DefaultBasePin,
		Top:   DefaultTopPin,
		Laser: DefaultLaserPin,
	}}
}

// Override replaces stored channels. Only positive values are applied;
// zero means "leave the current value untouched".
func (d *Defaults) Override(base, top, laser int) {
	if base > 0 {
		d.pins.Base = base
	}
	if top > 0 {
		d.pins.Top = top
	}
	if laser > 0 {
		d.pins.Laser = laser
	}
}

// Snapshot returns a copy of the current assignment.
func (d *Defaults) Snapshot() Pins {
	return d.pins
}
