package auth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener shows a URL to the user, normally in a web browser.
type Opener func(url string) error

// OpenBrowser launches the platform's default browser on url.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	// Reap the opener once it hands off to the browser.
	go func() { _ = cmd.Wait() }()
	return nil
}
