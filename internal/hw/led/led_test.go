package led

import (
	"testing"

	"github.com/cjeanneret/LaserTower/internal/hw/gpio"
)

func newTestLED(t *testing.T) (*LED, *gpio.MockDriver) {
	t.Helper()
	drv := gpio.NewMockDriver()
	l, err := New(drv, 17)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, drv
}

func TestNew_StartsLow(t *testing.T) {
	_, drv := newTestLED(t)

	level, ok := drv.LastLevel(17)
	if !ok {
		t.Fatal("pin 17 was never written")
	}
	if level != gpio.Low {
		t.Errorf("initial level = %v, want Low", level)
	}
}

func TestOnOff(t *testing.T) {
	l, drv := newTestLED(t)

	if err := l.On(); err != nil {
		t.Fatalf("On: %v", err)
	}
	if level, _ := drv.LastLevel(17); level != gpio.High {
		t.Errorf("after On: level = %v, want High", level)
	}

	if err := l.Off(); err != nil {
		t.Fatalf("Off: %v", err)
	}
	if level, _ := drv.LastLevel(17); level != gpio.Low {
		t.Errorf("after Off: level = %v, want Low", level)
	}
}

func TestRelease_DropsLowAndRefusesWrites(t *testing.T) {
	l, drv := newTestLED(t)
	if err := l.On(); err != nil {
		t.Fatalf("On: %v", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if level, _ := drv.LastLevel(17); level != gpio.Low {
		t.Errorf("after Release: level = %v, want Low", level)
	}

	if err := l.On(); err == nil {
		t.Error("On after Release should fail")
	}
	if err := l.Off(); err == nil {
		t.Error("Off after Release should fail")
	}
}

func TestRelease_Idempotent(t *testing.T) {
	l, _ := newTestLED(t)
	if err := l.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}
