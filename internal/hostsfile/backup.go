package hostsfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/blocklist"
)

const (
	backupPrefix     = "hosts."
	backupSuffix     = ".bak"
	backupTimeLayout = "20060102-150405.000000000"
)

// BackupInfo holds information about a backup file.
type BackupInfo struct {
	Name      string
	Timestamp int64
	Size      int64
}

// createBackup writes content into the backup directory, prunes old backups
// and returns the backup name.
func (m *Manager) createBackup(content []byte) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", &IOError{Op: "create backup directory", Path: m.backupDir, Err: err}
	}

	name := backupPrefix + m.now().Format(backupTimeLayout) + backupSuffix
	backupPath := filepath.Join(m.backupDir, name)

	if err := os.WriteFile(backupPath, content, 0644); err != nil {
		return "", &IOError{Op: "write backup", Path: backupPath, Err: err}
	}

	if err := m.cleanupBackups(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to cleanup backups: %v\n", err)
	}

	return name, nil
}

func (m *Manager) cleanupBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	limit := m.maxBackups
	if limit <= 0 {
		limit = DefaultMaxBackups
	}
	if len(backups) <= limit {
		return nil
	}

	for _, b := range backups[limit:] {
		os.Remove(filepath.Join(m.backupDir, b.Name))
	}

	return nil
}

// ListBackups returns the available backups, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "list", Path: m.backupDir, Err: err}
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !validBackupName(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Name:      entry.Name(),
			Timestamp: info.ModTime().Unix(),
			Size:      info.Size(),
		})
	}

	// Names embed a sortable timestamp.
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})

	return backups, nil
}

// RestoreBackup restores a backup by name. The current file is snapshotted
// first so a restore can itself be undone.
func (m *Manager) RestoreBackup(name string) (*Result, error) {
	if !validBackupName(name) {
		return nil, fmt.Errorf("invalid backup name: %q", name)
	}

	backupPath := filepath.Join(m.backupDir, name)
	content, err := os.ReadFile(backupPath)
	if err != nil {
		return nil, &IOError{Op: "read backup", Path: backupPath, Err: err}
	}

	current, err := m.readLines()
	if err != nil {
		return nil, err
	}

	// Restored verbatim; a damaged block in the backup only hides the host list.
	restored := splitLines(string(content))
	hosts, err := blocklist.Managed(restored)
	if err != nil {
		hosts = []string{}
	}

	return m.commit(current, restored, hosts)
}

// validBackupName rejects anything that is not a plain hosts.<stamp>.bak name.
func validBackupName(name string) bool {
	if filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return false
	}
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
		return false
	}
	return len(name) > len(backupPrefix)+len(backupSuffix)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
