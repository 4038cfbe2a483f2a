package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms. Callers should print the URL
// as a fallback when this fails.
func OpenBrowser(url string) error {
	var name string
	var args []string

	rt := getRuntime()
	switch rt {
	case "darwin":
		name = "open"
	case "linux":
		name = "xdg-open"
	case "windows":
		name, args = "cmd", []string{"/c", "start"}
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := exec.Command(name, append(args, url)...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
