package platform

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatform_HostsFilePath(t *testing.T) {
	tests := []struct {
		goos     string
		expected string
	}{
		{"linux", "/etc/hosts"},
		{"darwin", "/etc/hosts"},
		{"windows", `C:\Windows\System32\drivers\etc\hosts`},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			path, err := Platform{GOOS: tt.goos}.HostsFilePath()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, path)
		})
	}
}

func TestPlatform_HostsFilePath_CustomSystemDir(t *testing.T) {
	p := Platform{GOOS: "windows", SystemDir: `D:\Win\System32`}
	path, err := p.HostsFilePath()
	require.NoError(t, err)
	assert.Equal(t, `D:\Win\System32\drivers\etc\hosts`, path)
}

func TestPlatform_Unsupported(t *testing.T) {
	for _, goos := range []string{"freebsd", "plan9", "js", ""} {
		t.Run(goos, func(t *testing.T) {
			p := Platform{GOOS: goos}

			_, err := p.HostsFilePath()
			var ue *UnsupportedError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, goos, ue.GOOS)
			assert.Contains(t, err.Error(), "unsupported operating system")

			_, err = p.BackupDir()
			assert.ErrorAs(t, err, &ue)

			_, err = p.AuditLogPath()
			assert.ErrorAs(t, err, &ue)
		})
	}
}

func TestPlatform_DefaultLocations(t *testing.T) {
	linux := Platform{GOOS: "linux"}
	dir, err := linux.BackupDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/backups/hosts-page-blocker", dir)

	logPath, err := linux.AuditLogPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/hosts-page-blocker/audit.log", logPath)

	windows := Platform{GOOS: "windows"}
	dir, err = windows.BackupDir()
	require.NoError(t, err)
	assert.Equal(t, `C:\Windows\System32\drivers\etc\hosts-page-blocker-backups`, dir)

	logPath, err = windows.AuditLogPath()
	require.NoError(t, err)
	assert.Equal(t, `C:\ProgramData\hosts-page-blocker\audit.log`, logPath)
}

func TestPlatform_RequireElevated(t *testing.T) {
	t.Run("elevated", func(t *testing.T) {
		p := Platform{GOOS: "linux", Elevated: func() bool { return true }}
		assert.True(t, p.IsElevated())
		assert.NoError(t, p.RequireElevated())
	})

	t.Run("not elevated", func(t *testing.T) {
		p := Platform{GOOS: "linux", Elevated: func() bool { return false }}
		err := p.RequireElevated()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotElevated))
		assert.Contains(t, err.Error(), "sudo")
	})

	t.Run("windows remediation", func(t *testing.T) {
		p := Platform{GOOS: "windows", Elevated: func() bool { return false }}
		err := p.RequireElevated()
		assert.Contains(t, err.Error(), "Administrator")
	})

	t.Run("nil probe", func(t *testing.T) {
		assert.False(t, Platform{GOOS: "linux"}.IsElevated())
	})
}

func TestCurrent(t *testing.T) {
	p := Current()
	assert.Equal(t, runtime.GOOS, p.GOOS)
	require.NotNil(t, p.Elevated)

	// Must not panic on any OS.
	_ = p.IsElevated()
}
