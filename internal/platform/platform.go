// Package platform resolves OS-specific paths and privileges.
//
// The rest of the program receives a Platform value instead of querying
// runtime.GOOS or the process credentials directly, so tests can pretend
// to be any supported OS.
package platform

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNotElevated is returned when a mutating command runs without
// administrator/root privileges.
var ErrNotElevated = errors.New("this command requires administrator/root privileges")

// UnsupportedError is returned for operating systems without a known hosts file.
type UnsupportedError struct {
	GOOS string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported operating system: %s", e.GOOS)
}

const (
	unixHostsPath  = "/etc/hosts"
	unixBackupDir  = "/var/backups/hosts-page-blocker"
	unixAuditLog   = "/var/log/hosts-page-blocker/audit.log"
	defaultSysDir  = `C:\Windows\System32`
	defaultDataDir = `C:\ProgramData`
)

// Platform describes the machine the tool runs on.
type Platform struct {
	// GOOS is a runtime.GOOS value.
	GOOS string
	// SystemDir is the Windows system directory; ignored elsewhere.
	SystemDir string
	// DataDir is the Windows ProgramData directory; ignored elsewhere.
	DataDir string
	// Elevated reports whether the process has administrator/root rights.
	Elevated func() bool
}

// Current returns the Platform of the running process.
func Current() Platform {
	return Platform{
		GOOS:      runtime.GOOS,
		SystemDir: systemDirectory(),
		DataDir:   programData(),
		Elevated:  isElevated,
	}
}

// HostsFilePath returns the absolute path of the system hosts file.
func (p Platform) HostsFilePath() (string, error) {
	switch p.GOOS {
	case "windows":
		return windowsJoin(p.systemDir(), "drivers", "etc", "hosts"), nil
	case "linux", "darwin":
		return unixHostsPath, nil
	}
	return "", &UnsupportedError{GOOS: p.GOOS}
}

// BackupDir returns the default directory for hosts file backups.
func (p Platform) BackupDir() (string, error) {
	switch p.GOOS {
	case "windows":
		return windowsJoin(p.systemDir(), "drivers", "etc", "hosts-page-blocker-backups"), nil
	case "linux", "darwin":
		return unixBackupDir, nil
	}
	return "", &UnsupportedError{GOOS: p.GOOS}
}

// AuditLogPath returns the default audit log location.
func (p Platform) AuditLogPath() (string, error) {
	switch p.GOOS {
	case "windows":
		dir := p.DataDir
		if dir == "" {
			dir = defaultDataDir
		}
		return windowsJoin(dir, "hosts-page-blocker", "audit.log"), nil
	case "linux", "darwin":
		return unixAuditLog, nil
	}
	return "", &UnsupportedError{GOOS: p.GOOS}
}

// IsElevated reports whether the process may write the hosts file.
func (p Platform) IsElevated() bool {
	if p.Elevated == nil {
		return false
	}
	return p.Elevated()
}

// RequireElevated returns ErrNotElevated, wrapped with instructions for
// the user, when the process is not elevated.
func (p Platform) RequireElevated() error {
	if p.IsElevated() {
		return nil
	}
	return fmt.Errorf("%w\n%s", ErrNotElevated, p.Remediation())
}

// Remediation explains how to re-run the tool with the right privileges.
func (p Platform) Remediation() string {
	switch p.GOOS {
	case "windows":
		return "  Windows: run the terminal as Administrator"
	case "linux", "darwin":
		return "  Linux/macOS: run with 'sudo hosts-page-blocker'"
	}
	return "  Linux/macOS: run with 'sudo hosts-page-blocker'\n  Windows: run the terminal as Administrator"
}

func (p Platform) systemDir() string {
	if p.SystemDir != "" {
		return p.SystemDir
	}
	return defaultSysDir
}

// windowsJoin joins with backslashes regardless of the host OS, so a
// Windows Platform yields Windows paths in tests on any machine.
func windowsJoin(elem ...string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(elem...)
	}
	for i := range elem {
		elem[i] = strings.TrimRight(elem[i], `\/`)
	}
	return strings.Join(elem, `\`)
}
