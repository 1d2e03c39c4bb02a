// Package app implements the hosts-page-blocker command line.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/audit"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/config"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/dnsflush"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/hostsfile"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/platform"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/tui"
)

const appName = "hosts-page-blocker"

type flusher interface {
	Flush() error
}

// App holds the dependencies shared by every command.
type App struct {
	Platform   platform.Platform
	ConfigPath string
	Version    string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	plain      bool
	newFlusher func(method dnsflush.Method) flusher
}

// New creates an App for the running process.
func New(version string) *App {
	return &App{
		Platform:   platform.Current(),
		ConfigPath: config.DefaultConfigPath(),
		Version:    version,
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
		newFlusher: func(method dnsflush.Method) flusher {
			return dnsflush.New(method)
		},
	}
}

// Command builds the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Block web pages by redirecting them in the system hosts file",
		Long: "hosts-page-blocker redirects the hostnames of the pages you enter to the local\n" +
			"machine by maintaining a marked block in the system hosts file.\n\n" +
			"Run without a command to enter the pages interactively.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive()
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	root.PersistentFlags().StringVar(&a.ConfigPath, "config", a.ConfigPath, "path to config file")
	root.Flags().BoolVar(&a.plain, "plain", false, "use line prompts even on a terminal")

	root.AddCommand(
		a.newBlockCommand(),
		a.newUnblockCommand(),
		a.newListCommand(),
		a.newApplyCommand(),
		a.newWatchCommand(),
		a.newBackupsCommand(),
		a.newRestoreCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)

	return root
}

// session carries what a single command needs to touch the hosts file.
type session struct {
	cfg   *config.Config
	hosts *hostsfile.Manager
	audit *audit.Logger
}

func (a *App) closeSession(s *session) {
	if err := s.audit.Close(); err != nil {
		a.warnf("failed to close audit log: %v", err)
	}
}

// prepare checks privileges, loads the config and resolves the hosts file.
// Mutating commands pass elevated; commands that only make sense with a
// config file pass requireConfig.
func (a *App) prepare(elevated, requireConfig bool) (*session, *config.Manager, error) {
	if elevated {
		if err := a.Platform.RequireElevated(); err != nil {
			return nil, nil, err
		}
	}

	cfgManager := config.NewManager(a.ConfigPath)
	load := cfgManager.LoadOrDefault
	if requireConfig {
		load = cfgManager.Load
	}
	if err := load(); err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w (run '%s config init' to create one)", err, appName)
		}
		return nil, nil, err
	}

	s, err := a.newSession(cfgManager.Get(), elevated)
	if err != nil {
		return nil, nil, err
	}
	return s, cfgManager, nil
}

func (a *App) newSession(cfg *config.Config, withAudit bool) (*session, error) {
	hostsPath := cfg.Settings.HostsPath
	if hostsPath == "" {
		path, err := a.Platform.HostsFilePath()
		if err != nil {
			return nil, err
		}
		hostsPath = path
	}

	backupDir := cfg.Settings.BackupDir
	if backupDir == "" {
		dir, err := a.Platform.BackupDir()
		if err != nil {
			return nil, err
		}
		backupDir = dir
	}

	s := &session{
		cfg:   cfg,
		hosts: hostsfile.NewManager(hostsPath, backupDir, cfg.Settings.Backups()),
	}
	if withAudit {
		s.audit = a.openAudit(cfg)
	}
	return s, nil
}

// openAudit opens the audit log. Failure only produces a warning.
func (a *App) openAudit(cfg *config.Config) *audit.Logger {
	path := cfg.Settings.AuditLog
	if path == config.AuditLogDisabled {
		return nil
	}
	if path == "" {
		p, err := a.Platform.AuditLogPath()
		if err != nil {
			a.warnf("audit log disabled: %v", err)
			return nil
		}
		path = p
	}

	logger, err := audit.Open(path)
	if err != nil {
		a.warnf("audit log disabled: %v", err)
		return nil
	}
	return logger
}

// record writes the audit entry for a finished write and flushes the DNS
// cache when the file changed.
func (a *App) record(s *session, action string, result *hostsfile.Result, err error) error {
	details := map[string]any{"hostsFile": s.hosts.Path()}
	if result != nil {
		details["hostnames"] = result.Hostnames
		details["changed"] = result.Changed
		if result.Backup != "" {
			details["backup"] = result.Backup
		}
	}
	s.audit.Log(action, details, err)

	if err != nil {
		return err
	}
	if result.Changed {
		a.flushDNS(s.cfg)
	}
	return nil
}

func (a *App) flushDNS(cfg *config.Config) {
	if err := a.newFlusher(cfg.Settings.FlushMethod).Flush(); err != nil {
		a.warnf("failed to flush DNS cache: %v", err)
	}
}

// report prints the summary of a write.
func (a *App) report(s *session, headline string, result *hostsfile.Result) {
	if result.Changed {
		fmt.Fprintln(a.Out, tui.Success("✓ "+headline))
	} else {
		fmt.Fprintln(a.Out, tui.Success("✓ Hosts file already up to date"))
	}

	fmt.Fprintf(a.Out, "  Blocked hostnames: %d\n", len(result.Hostnames))
	fmt.Fprintln(a.Out, tui.Muted("  Hosts file: "+s.hosts.Path()))
	if result.Backup != "" {
		fmt.Fprintln(a.Out, tui.Muted("  Backup: "+result.Backup))
	}
}

func (a *App) warnf(format string, args ...any) {
	fmt.Fprintln(a.Err, tui.Warning("warning: "+fmt.Sprintf(format, args...)))
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
