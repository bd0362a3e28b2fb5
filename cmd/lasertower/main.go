package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"github.com/cjeanneret/LaserTower/internal/config"
	"github.com/cjeanneret/LaserTower/internal/debug"
	"github.com/cjeanneret/LaserTower/internal/hw"
	"github.com/cjeanneret/LaserTower/internal/hw/gpio"
	"github.com/cjeanneret/LaserTower/internal/notify"
	"github.com/cjeanneret/LaserTower/internal/tower"
	"github.com/cjeanneret/LaserTower/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	basePin := flag.Int("base", 0, "override base servo channel (BCM); 0 = use config")
	topPin := flag.Int("top", 0, "override top servo channel (BCM); 0 = use config")
	laserPin := flag.Int("laser", 0, "override laser channel (BCM); 0 = use config")
	mock := flag.Bool("mock", false, "force mock GPIO driver regardless of config")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	if err := validatePinOverrides(*basePin, *topPin, *laserPin); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	// Initialize GPIO driver
	useMock := cfg.Defaults.MockGPIO || *mock
	debug.Value("Mock GPIO", useMock)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(useMock)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Build the tower: config supplies the defaults, CLI flags override
	// per instance (zero = keep the config value).
	debug.Step(2, "Acquiring tower handles")
	defaults := tower.NewDefaults()
	defaults.Override(cfg.Tower.BasePin, cfg.Tower.TopPin, cfg.Tower.LaserPin)
	pulse := cfg.PulseProfile()
	twr, err := tower.New(hw.NewGPIOProvider(gpioDriver), tower.Options{
		Defaults: defaults,
		BasePin:  *basePin,
		TopPin:   *topPin,
		LaserPin: *laserPin,
		Pulse:    &pulse,
	})
	if err != nil {
		log.Fatalf("init tower failed: %v", err)
	}
	defer twr.Close()
	debug.Value("Pins", twr.Pins())

	// Wire the notifier if a collector is configured
	debug.Step(3, "Configuring notifier")
	var notifyFn web.NotifyFunc
	if cfg.Notifier.Endpoint != "" {
		deviceID := cfg.Notifier.DeviceID
		if deviceID == "" {
			deviceID = uuid.NewString()
			debug.Info("no device_id configured, generated %s", deviceID)
		}
		notifier := notify.New(cfg.Notifier.Endpoint)
		notifyFn = func(message string) (*notify.Result, error) {
			return notifier.Notify(deviceID, message)
		}
		debug.Value("Collector", cfg.Notifier.Endpoint)
		debug.Value("Device ID", deviceID)
	}

	if port := webPort.port(); port > 0 {
		webAddr := fmt.Sprintf(":%d", port)
		broadcaster := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

		srv := web.NewServer(webAddr, broadcaster, twr, notifyFn)
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("web server: %v", err)
		}
		return
	}

	// No web server requested: interactive console on stdin
	con, err := newConsole(twr, notifyFn)
	if err != nil {
		log.Fatalf("init console failed: %v", err)
	}
	defer con.Close()
	con.Run(ctx, cancel)
}

// validatePinOverrides checks that non-zero CLI pin overrides are
// positive channel numbers. Zero values are ignored (they mean "use
// config default").
func validatePinOverrides(base, top, laser int) error {
	for name, pin := range map[string]int{"base": base, "top": top, "laser": laser} {
		if pin < 0 {
			return fmt.Errorf("%s channel must be a positive BCM number, got %d", name, pin)
		}
	}
	return nil
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
