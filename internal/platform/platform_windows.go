//go:build windows

package platform

import (
	"os"

	"golang.org/x/sys/windows"
)

func isElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

func systemDirectory() string {
	if dir, err := windows.GetSystemDirectory(); err == nil {
		return dir
	}
	if root := os.Getenv("SystemRoot"); root != "" {
		return root + `\System32`
	}
	return defaultSysDir
}

func programData() string {
	return os.Getenv("ProgramData")
}
