package hostsfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/blocklist"
)

// steppingClock returns a time source that advances one second per call.
func steppingClock() func() time.Time {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestManager_CreateBackup(t *testing.T) {
	hostsContent := "127.0.0.1\tlocalhost\n"
	manager, _, backupDir := newTestManager(t, hostsContent)

	name, err := manager.createBackup([]byte(hostsContent))
	require.NoError(t, err)

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, name, entries[0].Name())
	assert.True(t, strings.HasPrefix(name, "hosts."))
	assert.True(t, strings.HasSuffix(name, ".bak"))

	backupContent, err := os.ReadFile(filepath.Join(backupDir, name))
	require.NoError(t, err)
	assert.Equal(t, hostsContent, string(backupContent))
}

func TestManager_CreateBackup_Name(t *testing.T) {
	manager, _, _ := newTestManager(t, "x\n")
	manager.now = func() time.Time {
		return time.Date(2023, 12, 1, 12, 0, 0, 5, time.UTC)
	}

	name, err := manager.createBackup([]byte("x\n"))
	require.NoError(t, err)
	assert.Equal(t, "hosts.20231201-120000.000000005.bak", name)
}

func TestManager_ListBackups(t *testing.T) {
	manager, _, backupDir := newTestManager(t, "localhost")

	err := os.MkdirAll(backupDir, 0755)
	require.NoError(t, err)

	backupNames := []string{
		"hosts.20231201-120000.000000000.bak",
		"hosts.20231201-120002.000000000.bak",
		"hosts.20231201-120001.000000000.bak",
		"unrelated.txt",
	}
	for _, name := range backupNames {
		err = os.WriteFile(filepath.Join(backupDir, name), []byte("backup"), 0644)
		require.NoError(t, err)
	}

	backups, err := manager.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, "hosts.20231201-120002.000000000.bak", backups[0].Name)
	assert.Equal(t, "hosts.20231201-120000.000000000.bak", backups[2].Name)
	assert.Equal(t, int64(len("backup")), backups[0].Size)
}

func TestManager_ListBackups_NoBackupDir(t *testing.T) {
	tmpDir := t.TempDir()
	manager := NewManager(filepath.Join(tmpDir, "hosts"), filepath.Join(tmpDir, "nonexistent"), DefaultMaxBackups)

	backups, err := manager.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestManager_RestoreBackup(t *testing.T) {
	initialContent := "127.0.0.1\tlocalhost\n"
	manager, hostsPath, _ := newTestManager(t, initialContent)
	manager.now = steppingClock()

	result, err := manager.Apply(blocklist.Expand([]string{"example.com"}))
	require.NoError(t, err)
	require.NotEmpty(t, result.Backup)

	restored, err := manager.RestoreBackup(result.Backup)
	require.NoError(t, err)
	assert.True(t, restored.Changed)
	assert.Empty(t, restored.Hostnames)
	assert.Equal(t, initialContent, readFile(t, hostsPath))

	// The restore took its own snapshot of the blocked state.
	backups, err := manager.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, restored.Backup, backups[0].Name)

	// Restoring that snapshot brings the block back.
	again, err := manager.RestoreBackup(restored.Backup)
	require.NoError(t, err)
	assert.Equal(t, blocklist.Expand([]string{"example.com"}), again.Hostnames)
	assert.Contains(t, readFile(t, hostsPath), "0.0.0.0\t\texample.com\n")
}

func TestManager_RestoreBackup_InvalidName(t *testing.T) {
	tmpDir := t.TempDir()
	manager := NewManager(
		filepath.Join(tmpDir, "hosts"),
		filepath.Join(tmpDir, "backups"),
		DefaultMaxBackups,
	)

	tests := []string{
		"../../../etc/passwd",
		"hosts.bak",        // Missing timestamp
		"notahosts.backup", // Wrong format
		"hosts.x/../../passwd.bak",
		`hosts.x\..\passwd.bak`,
		"",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := manager.RestoreBackup(name)
			assert.Error(t, err)
		})
	}
}

func TestManager_RestoreBackup_Missing(t *testing.T) {
	manager, _, _ := newTestManager(t, "x\n")

	_, err := manager.RestoreBackup("hosts.20200101-000000.000000000.bak")
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "read backup", ioErr.Op)
}

func TestManager_CleanupBackups(t *testing.T) {
	manager, _, _ := newTestManager(t, "localhost")
	manager.maxBackups = 3
	manager.now = steppingClock()

	for i := 0; i < 8; i++ {
		_, err := manager.createBackup([]byte("localhost"))
		require.NoError(t, err)
	}

	backups, err := manager.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 3)
	// Newest survive.
	assert.Equal(t, "hosts.20240301-120008.000000000.bak", backups[0].Name)
	assert.Equal(t, "hosts.20240301-120006.000000000.bak", backups[2].Name)
}

func TestValidBackupName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"hosts.20231201-120000.000000000.bak", true},
		{"hosts.anything.bak", true},
		{"hosts.bak", false},
		{"hosts..bak", false},
		{"hosts.x.txt", false},
		{"dir/hosts.x.bak", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, validBackupName(tt.name))
		})
	}
}
