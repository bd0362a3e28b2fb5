package gpio

import (
	"sync"

	"github.com/cjeanneret/LaserTower/internal/debug"
)

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// PinMode indicates whether a GPIO is input or output.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// Driver defines the abstract interface for controlling GPIOs,
// including hardware PWM for servo drive signals.
// This allows plugging in a real Raspberry Pi implementation
// or a mock for development on PC.
type Driver interface {
	SetupPin(pin int, mode PinMode) error
	WritePin(pin int, level Level) error
	SetupPWM(pin int, freqHz int) error
	// WritePWM sets the duty cycle as duty parts of a cycle-part period.
	WritePWM(pin int, duty, cycle uint32) error
	Close() error
}

// NewDriver creates a GPIO driver based on the chosen mode.
// If mock is true, returns a MockDriver (for dev/test).
// If mock is false, returns a real RPiDriver (for Raspberry Pi).
func NewDriver(mock bool) (Driver, error) {
	if mock {
		debug.Info("Using MOCK GPIO driver (development mode)")
		return NewMockDriver(), nil
	}
	return NewRPiRealDriver()
}

// MockDriver is a test implementation that logs actions and records
// the last value written to each pin. Used for development on PC or
// for verification in tests.
type MockDriver struct {
	mu     sync.Mutex
	levels map[int]Level
	duties map[int]Duty
}

// Duty is the last PWM value recorded by MockDriver for a pin.
type Duty struct {
	Duty  uint32
	Cycle uint32
}

// NewMockDriver creates a recording mock driver.
func NewMockDriver() *MockDriver {
	return &MockDriver{
		levels: make(map[int]Level),
		duties: make(map[int]Duty),
	}
}

func (m *MockDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)
	return nil
}

func (m *MockDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)
	m.mu.Lock()
	m.levels[pin] = level
	m.mu.Unlock()
	return nil
}

func (m *MockDriver) SetupPWM(pin int, freqHz int) error {
	debug.GPIO("SetupPWM", pin, freqHz)
	return nil
}

func (m *MockDriver) WritePWM(pin int, duty, cycle uint32) error {
	debug.GPIO("WritePWM", pin, duty)
	m.mu.Lock()
	m.duties[pin] = Duty{Duty: duty, Cycle: cycle}
	m.mu.Unlock()
	return nil
}

func (m *MockDriver) Close() error {
	debug.Trace("GPIO Close (mock)")
	return nil
}

// LastLevel returns the last level written to pin, and whether the pin
// was ever written.
func (m *MockDriver) LastLevel(pin int) (Level, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.levels[pin]
	return l, ok
}

// LastDuty returns the last PWM value written to pin, and whether the
// pin was ever written.
func (m *MockDriver) LastDuty(pin int) (Duty, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.duties[pin]
	return d, ok
}
