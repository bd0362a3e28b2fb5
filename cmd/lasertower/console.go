package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/cjeanneret/LaserTower/internal/tower"
	"github.com/cjeanneret/LaserTower/internal/web"
)

// console is the interactive command loop used when no web server is
// requested. One command per line; Ctrl-D or "quit" exits.
type console struct {
	tower  *tower.Tower
	notify web.NotifyFunc
	rl     *readline.Instance
}

func newConsole(twr *tower.Tower, notifyFn web.NotifyFunc) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tower> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &console{
		tower:  twr,
		notify: notifyFn,
		rl:     rl,
	}, nil
}

// Close releases the terminal.
func (c *console) Close() {
	c.rl.Close()
}

// Run reads and executes commands until the context is cancelled or
// the user exits.
func (c *console) Run(ctx context.Context, cancel context.CancelFunc) {
	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				cancel()
				return
			}
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "base":
			c.cmdAngle(args, "base", c.tower.SetBaseAngle)

		case "top":
			c.cmdAngle(args, "top", c.tower.SetTopAngle)

		case "center":
			c.cmdCenter()

		case "laser":
			c.cmdLaser(args)

		case "notify":
			c.cmdNotify(args)

		case "status":
			c.cmdStatus()

		case "quit", "exit", "q":
			cancel()
			return

		default:
			fmt.Printf("unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func (c *console) printHelp() {
	fmt.Println(`commands:
  base <degrees>    position the base servo (0-360)
  top <degrees>     position the top servo (0-180)
  center            aim both servos at mid travel
  laser on|off      switch the laser
  notify <message>  send an event to the collector
  status            show last commanded state
  quit              exit`)
}

func (c *console) cmdAngle(args []string, name string, set func(float64) error) {
	if len(args) != 1 {
		fmt.Printf("usage: %s <degrees>\n", name)
		return
	}
	angle, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Printf("not a number: %s\n", args[0])
		return
	}
	if err := set(angle); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func (c *console) cmdCenter() {
	if err := c.tower.SetBaseAngle(180); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if err := c.tower.SetTopAngle(90); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func (c *console) cmdLaser(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Println("usage: laser on|off")
		return
	}
	var err error
	if args[0] == "on" {
		err = c.tower.LaserOn()
	} else {
		err = c.tower.LaserOff()
	}
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func (c *console) cmdNotify(args []string) {
	if c.notify == nil {
		fmt.Println("notifier not configured (set notifier.endpoint in the config)")
		return
	}
	if len(args) == 0 {
		fmt.Println("usage: notify <message>")
		return
	}
	result, err := c.notify(strings.Join(args, " "))
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if result.Data != nil {
		fmt.Printf("collector replied: %v\n", result.Data)
	} else {
		fmt.Printf("collector replied: %s\n", result.Text)
	}
}

func (c *console) cmdStatus() {
	st := c.tower.Status()
	fmt.Printf("pins:  base=%d top=%d laser=%d\n", st.Pins.Base, st.Pins.Top, st.Pins.Laser)
	fmt.Printf("base:  %g°\n", st.BaseAngle)
	fmt.Printf("top:   %g°\n", st.TopAngle)
	fmt.Printf("laser: %t\n", st.LaserOn)
}
