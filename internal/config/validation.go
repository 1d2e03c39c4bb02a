package config

import (
	"fmt"
	"path/filepath"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/hostname"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig validates the entire configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return &ValidationError{Field: "config", Message: "config is nil"}
	}

	if err := validateSettings(&cfg.Settings); err != nil {
		return err
	}

	for i, site := range cfg.Sites {
		if _, err := hostname.Parse(site); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("sites[%d]", i),
				Message: err.Error(),
			}
		}
	}

	return nil
}

type pathSetting struct {
	field string
	value string
}

func validateSettings(s *Settings) error {
	if !s.FlushMethod.Valid() {
		return &ValidationError{
			Field:   "settings.flushMethod",
			Message: fmt.Sprintf("invalid flush method: %s", s.FlushMethod),
		}
	}

	if s.MaxBackups != nil && *s.MaxBackups < 0 {
		return &ValidationError{
			Field:   "settings.maxBackups",
			Message: fmt.Sprintf("must not be negative: %d", *s.MaxBackups),
		}
	}

	paths := []pathSetting{
		{"settings.hostsPath", s.HostsPath},
		{"settings.backupDir", s.BackupDir},
	}
	if s.AuditLog != AuditLogDisabled {
		paths = append(paths, pathSetting{"settings.auditLog", s.AuditLog})
	}

	for _, p := range paths {
		if p.value != "" && !filepath.IsAbs(p.value) {
			return &ValidationError{
				Field:   p.field,
				Message: fmt.Sprintf("path must be absolute: %s", p.value),
			}
		}
	}

	return nil
}
