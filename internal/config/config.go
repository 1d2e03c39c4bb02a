// Package config handles YAML configuration parsing and hot-reload.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/blocklist"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/dnsflush"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/hostname"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/hostsfile"
)

const appName = "hosts-page-blocker"

// AuditLogDisabled turns the audit log off when used as settings.auditLog.
const AuditLogDisabled = "-"

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// DefaultConfigDir returns the default config directory path for users.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName)
}

// DefaultConfigPath returns the default config file path for users.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Settings holds global configuration settings. Empty paths fall back to
// the platform defaults.
type Settings struct {
	HostsPath   string          `yaml:"hostsPath,omitempty"`
	BackupDir   string          `yaml:"backupDir,omitempty"`
	MaxBackups  *int            `yaml:"maxBackups,omitempty"`
	FlushMethod dnsflush.Method `yaml:"flushMethod"`
	AuditLog    string          `yaml:"auditLog,omitempty"`
}

// Backups returns the number of backups to keep. 0 disables backups.
func (s Settings) Backups() int {
	if s.MaxBackups == nil {
		return hostsfile.DefaultMaxBackups
	}
	return *s.MaxBackups
}

// Config represents the complete configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
	Sites    []string `yaml:"sites"`
}

// Hostnames normalizes every site and expands the result into the set
// written to the hosts file.
func (c *Config) Hostnames() ([]string, error) {
	parsed := make([]string, 0, len(c.Sites))
	for i, site := range c.Sites {
		host, err := hostname.Parse(site)
		if err != nil {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("sites[%d]", i),
				Message: err.Error(),
			}
		}
		parsed = append(parsed, host)
	}
	return blocklist.Expand(parsed), nil
}

// AddSites appends sites not already present and returns how many were added.
func (c *Config) AddSites(sites ...string) int {
	existing := make(map[string]bool, len(c.Sites))
	for _, s := range c.Sites {
		existing[s] = true
	}

	added := 0
	for _, s := range sites {
		if s == "" || existing[s] {
			continue
		}
		existing[s] = true
		c.Sites = append(c.Sites, s)
		added++
	}
	return added
}

// RemoveSites drops every site that normalizes to one of hosts and returns
// how many were removed.
func (c *Config) RemoveSites(hosts ...string) int {
	drop := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		drop[h] = true
	}

	kept := c.Sites[:0]
	removed := 0
	for _, s := range c.Sites {
		if host, err := hostname.Parse(s); err == nil && drop[host] {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	c.Sites = kept
	return removed
}

// Manager handles configuration loading and watching.
type Manager struct {
	path     string
	config   *Config
	mu       sync.RWMutex
	watcher  *fsnotify.Watcher
	onChange func(*Config)
	onError  func(error)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewManager creates a new config manager.
func NewManager(path string) *Manager {
	return &Manager{
		path:   path,
		stopCh: make(chan struct{}),
	}
}

// Path returns the config file path.
func (m *Manager) Path() string {
	return m.path
}

// Load reads and parses the configuration file.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, m.path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()

	return nil
}

// LoadOrDefault loads the config file, falling back to an empty config
// when it does not exist.
func (m *Manager) LoadOrDefault() error {
	err := m.Load()
	if errors.Is(err, ErrNotFound) {
		m.mu.Lock()
		m.config = &Config{Settings: Settings{FlushMethod: dnsflush.MethodAuto}}
		m.mu.Unlock()
		return nil
	}
	return err
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Watch starts watching the config file for changes. onChange receives every
// successfully reloaded config; onError, if set, receives reload failures.
func (m *Manager) Watch(onChange func(*Config), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	m.watcher = watcher
	m.onChange = onChange
	m.onError = onError

	// Editors replace the file on save, so watch the directory instead.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	go m.watchLoop()

	return nil
}

func (m *Manager) watchLoop() {
	target := filepath.Clean(m.path)
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if err := m.Load(); err != nil {
					if m.onError != nil && !errors.Is(err, ErrNotFound) {
						m.onError(err)
					}
					continue
				}
				if m.onChange != nil {
					m.onChange(m.Get())
				}
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			if m.onError != nil {
				m.onError(err)
			}
		case <-m.stopCh:
			return
		}
	}
}

// Stop stops watching the config file.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		if m.watcher != nil {
			m.watcher.Close()
		}
	})
}

// Save writes the configuration to the file.
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		return fmt.Errorf("no config loaded")
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return writeConfig(m.path, cfg)
}

// CreateDefault creates a default configuration file. An existing file is
// left alone.
func CreateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	maxBackups := hostsfile.DefaultMaxBackups
	cfg := &Config{
		Settings: Settings{
			MaxBackups:  &maxBackups,
			FlushMethod: dnsflush.MethodAuto,
		},
		Sites: []string{},
	}

	return writeConfig(path, cfg)
}

func writeConfig(path string, cfg *Config) error {
	// #nosec G301 - Config directory permissions are intentionally 0755
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// #nosec G306 - Config is not secret
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
