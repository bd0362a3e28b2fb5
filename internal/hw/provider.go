// Package hw wires the concrete GPIO devices to the tower.Provider
// contract.
package hw

import (
	"github.com/cjeanneret/LaserTower/internal/hw/gpio"
	"github.com/cjeanneret/LaserTower/internal/hw/led"
	"github.com/cjeanneret/LaserTower/internal/hw/servo"
	"github.com/cjeanneret/LaserTower/internal/tower"
)

// GPIOProvider acquires servo and LED handles over a shared GPIO driver.
type GPIOProvider struct {
	gpio gpio.Driver
}

// NewGPIOProvider creates a provider backed by g. The driver stays
// owned by the caller; closing it is separate from releasing handles.
func NewGPIOProvider(g gpio.Driver) *GPIOProvider {
	return &GPIOProvider{gpio: g}
}

// Actuator implements tower.Provider.
func (p *GPIOProvider) Actuator(channel int, profile tower.PulseProfile) (tower.Actuator, error) {
	return servo.New(p.gpio, channel, profile)
}

// Output implements tower.Provider.
func (p *GPIOProvider) Output(channel int) (tower.Output, error) {
	return led.New(p.gpio, channel)
}
