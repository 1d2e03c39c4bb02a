// Package hostsfile reads and rewrites the system hosts file around the
// managed block built by the blocklist package.
package hostsfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/blocklist"
)

// DefaultMaxBackups is the number of backups kept when none is configured.
const DefaultMaxBackups = 10

// IOError wraps a failed filesystem operation on the hosts file or its backups.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Result describes the outcome of a write operation.
type Result struct {
	// Hostnames now listed in the managed block.
	Hostnames []string
	// Changed is false when the file already had the requested content.
	Changed bool
	// Backup is the name of the snapshot taken before writing, if any.
	Backup string
}

// Manager handles reading and writing the hosts file.
type Manager struct {
	hostsPath  string
	backupDir  string
	maxBackups int
	now        func() time.Time
}

// NewManager creates a hosts manager. maxBackups <= 0 disables backups.
func NewManager(hostsPath, backupDir string, maxBackups int) *Manager {
	return &Manager{
		hostsPath:  hostsPath,
		backupDir:  backupDir,
		maxBackups: maxBackups,
		now:        time.Now,
	}
}

// Path returns the hosts file path.
func (m *Manager) Path() string {
	return m.hostsPath
}

// Managed returns the hostnames currently listed in the managed block.
func (m *Manager) Managed() ([]string, error) {
	lines, err := m.readLines()
	if err != nil {
		return nil, err
	}
	return blocklist.Managed(lines)
}

// Apply replaces the managed block with entries for hosts. hosts must be
// in blocklist.Expand form. Nothing is written when the file already holds
// exactly this block, or when the existing block is corrupt.
func (m *Manager) Apply(hosts []string) (*Result, error) {
	lines, err := m.readLines()
	if err != nil {
		return nil, err
	}

	patched, err := blocklist.Patch(lines, blocklist.Render(hosts))
	if err != nil {
		return nil, err
	}

	return m.commit(lines, patched, hosts)
}

// Clear removes the managed block, leaving the rest of the file untouched.
func (m *Manager) Clear() (*Result, error) {
	lines, err := m.readLines()
	if err != nil {
		return nil, err
	}

	stripped, err := blocklist.Strip(lines)
	if err != nil {
		return nil, err
	}

	return m.commit(lines, stripped, []string{})
}

func (m *Manager) commit(old, updated, hosts []string) (*Result, error) {
	result := &Result{Hostnames: hosts}
	if slices.Equal(old, updated) {
		return result, nil
	}

	if m.maxBackups > 0 {
		name, err := m.createBackup([]byte(strings.Join(old, "")))
		if err != nil {
			return nil, fmt.Errorf("failed to create backup: %w", err)
		}
		result.Backup = name
	}

	if err := m.writeAtomic([]byte(strings.Join(updated, ""))); err != nil {
		return nil, err
	}

	result.Changed = true
	return result, nil
}

// readLines returns the file split into lines with their terminators kept.
func (m *Manager) readLines() ([]string, error) {
	file, err := os.Open(m.hostsPath)
	if err != nil {
		return nil, &IOError{Op: "open", Path: m.hostsPath, Err: err}
	}
	defer file.Close()

	var lines []string
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &IOError{Op: "read", Path: m.hostsPath, Err: err}
		}
	}

	return lines, nil
}

// writeAtomic replaces the hosts file with content via a temporary file in
// the same directory. When the rename is refused, as with a bind-mounted
// /etc/hosts in containers, the file is overwritten in place instead.
func (m *Manager) writeAtomic(content []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(m.hostsPath); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.hostsPath), ".hosts-page-blocker-*.tmp")
	if err != nil {
		return m.writeInPlace(content, mode)
	}
	tmpPath := tmp.Name()

	if err := writeAndClose(tmp, content); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "chmod", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, m.hostsPath); err != nil {
		os.Remove(tmpPath)
		return m.writeInPlace(content, mode)
	}

	return nil
}

func (m *Manager) writeInPlace(content []byte, mode os.FileMode) error {
	// #nosec G304 - path comes from platform resolution or the admin's config
	file, err := os.OpenFile(m.hostsPath, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, mode)
	if err != nil {
		return &IOError{Op: "open", Path: m.hostsPath, Err: err}
	}
	if err := writeAndClose(file, content); err != nil {
		return &IOError{Op: "write", Path: m.hostsPath, Err: err}
	}
	return nil
}

func writeAndClose(file *os.File, content []byte) error {
	if _, err := file.Write(content); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
