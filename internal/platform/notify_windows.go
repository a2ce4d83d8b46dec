//go:build windows

package platform

import (
	"os/exec"
	"strings"
)

// Notify displays a toast notification using the Windows notification center.
func Notify(title, body string, opts Options) error {
	script := toastScript(AppName, title, body, strings.TrimSpace(opts.IconPath))
	cmd := exec.Command("powershell.exe", "-NoProfile", "-Command", script)
	return cmd.Run()
}
