// Package desktop hands URLs to the OS browser and text to the clipboard.
package desktop

import (
	"errors"
	"io"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

var ErrEmptyURL = errors.New("empty url")

// command builds the OS-specific open command; swapped in tests.
var command = func(u string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", u)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", u)
	default:
		return exec.Command("xdg-open", u)
	}
}

// OpenURL opens an http(s) URL in the default browser and waits for the
// launcher to exit.
func OpenURL(u string) error {
	u = strings.TrimSpace(u)
	if u == "" {
		return ErrEmptyURL
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("refusing to open non-http url: " + u)
	}
	cmd := command(u)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Wait()
}

// Copy writes s to the system clipboard.
func Copy(s string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard unsupported on this system")
	}
	return clipboard.WriteAll(strings.ReplaceAll(s, "\r\n", "\n"))
}
