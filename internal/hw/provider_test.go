package hw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjeanneret/LaserTower/internal/hw/gpio"
	"github.com/cjeanneret/LaserTower/internal/tower"
)

func TestGPIOProvider_BacksATower(t *testing.T) {
	drv := gpio.NewMockDriver()
	twr, err := tower.New(NewGPIOProvider(drv), tower.Options{})
	require.NoError(t, err)

	// 90 degrees on the base maps to value -0.5, i.e. a 1ms pulse on a
	// 20ms frame: 100 of 2000 divisions.
	require.NoError(t, twr.SetBaseAngle(90))
	duty, ok := drv.LastDuty(tower.DefaultBasePin)
	require.True(t, ok)
	assert.Equal(t, uint32(100), duty.Duty)

	require.NoError(t, twr.SetTopAngle(90))
	duty, ok = drv.LastDuty(tower.DefaultTopPin)
	require.True(t, ok)
	assert.Equal(t, uint32(150), duty.Duty)

	require.NoError(t, twr.LaserOn())
	level, _ := drv.LastLevel(tower.DefaultLaserPin)
	assert.Equal(t, gpio.High, level)

	twr.Close()
	level, _ = drv.LastLevel(tower.DefaultLaserPin)
	assert.Equal(t, gpio.Low, level, "close must drop the laser line")
}

func TestGPIOProvider_InvalidProfileSurfaces(t *testing.T) {
	drv := gpio.NewMockDriver()
	_, err := NewGPIOProvider(drv).Actuator(23, tower.PulseProfile{})
	assert.Error(t, err)
}
