package renderer

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

// probeDisplay reports whether a windowing display is reachable.
// Only X11/Wayland platforms need an environment variable.
func probeDisplay() error {
	return displayAvailable(runtime.GOOS, os.Getenv)
}

func displayAvailable(goos string, getenv func(string) string) error {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		if getenv("DISPLAY") == "" && getenv("WAYLAND_DISPLAY") == "" {
			return fmt.Errorf("%w: neither DISPLAY nor WAYLAND_DISPLAY is set", ErrUnavailable)
		}
	}
	return nil
}

// probeTerminal reports whether stdin and stdout are attached to a terminal.
func probeTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("%w: stdin/stdout is not a terminal", ErrUnavailable)
	}
	return nil
}
