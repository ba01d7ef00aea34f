package notify

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnsupported is returned on platforms without a known notifier command.
var ErrUnsupported = errors.New("desktop notifications not supported on this platform")

// Desktop sends notifications through notify-send or osascript. The command
// is started and reaped in the background so the caller never waits on it.
type Desktop struct {
	enabled bool
	goos    string
	start   func(name string, args ...string) error
}

// NewDesktop creates a desktop sink for the running platform.
func NewDesktop(enabled bool) *Desktop {
	return &Desktop{enabled: enabled, goos: runtime.GOOS, start: startDetached}
}

func (d *Desktop) Send(m Message) error {
	if !d.enabled {
		return nil
	}
	name, args, err := d.command(m)
	if err != nil {
		return err
	}
	return d.start(name, args...)
}

func (d *Desktop) command(m Message) (string, []string, error) {
	switch d.goos {
	case "darwin":
		script := `display notification "` + escapeAppleScript(m.Body) + `" with title "` + escapeAppleScript(m.Title) + `"`
		return "osascript", []string{"-e", script}, nil
	case "linux", "freebsd", "openbsd":
		args := []string{"--app-name=pipefit", "--icon=" + iconFor(m)}
		if m.Final {
			args = append(args, "--urgency=critical")
		}
		return "notify-send", append(args, m.Title, m.Body), nil
	default:
		return "", nil, ErrUnsupported
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func iconFor(m Message) string {
	if m.Final {
		return "dialog-positive"
	}
	return "dialog-information"
}
