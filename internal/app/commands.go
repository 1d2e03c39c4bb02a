package app

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/audit"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/blocklist"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/config"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/hostname"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/hostsfile"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/prompt"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/tui"
)

// runInteractive asks for the pages to block and replaces the managed block.
func (a *App) runInteractive() error {
	s, _, err := a.prepare(true, false)
	if err != nil {
		return err
	}
	defer a.closeSession(s)

	urls, err := a.collect()
	if errors.Is(err, tui.ErrCancelled) {
		a.warnf("cancelled, hosts file left unchanged")
		return nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("input ended before all URLs were entered: %w", err)
		}
		return err
	}

	hosts := blocklist.Expand(urls)
	if len(hosts) == 0 {
		a.warnf("no URLs entered, hosts file left unchanged")
		return nil
	}

	result, err := s.hosts.Apply(hosts)
	if err := a.record(s, audit.ActionBlock, result, err); err != nil {
		return err
	}
	a.report(s, "URLs have been successfully blocked!", result)
	return nil
}

// collect reads URLs through the terminal UI or plain line prompts.
func (a *App) collect() ([]string, error) {
	if !a.plain && isTerminal(a.In) {
		return tui.Collect(a.In, a.Out)
	}
	return prompt.Collect(prompt.NewLinePrompter(a.In, a.Out))
}

func parseArgs(args []string) ([]string, error) {
	hosts := make([]string, 0, len(args))
	for _, arg := range args {
		host, err := hostname.Parse(arg)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}

// saveSites applies edit to the config file, creating it first if needed.
func (a *App) saveSites(cfgManager *config.Manager, edit func(*config.Config) int) error {
	if err := cfgManager.Load(); errors.Is(err, config.ErrNotFound) {
		if err := config.CreateDefault(cfgManager.Path()); err != nil {
			return err
		}
		if err := cfgManager.Load(); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if edit(cfgManager.Get()) == 0 {
		return nil
	}
	if err := cfgManager.Save(); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, tui.Muted("  Config updated: "+cfgManager.Path()))
	return nil
}

func (a *App) newBlockCommand() *cobra.Command {
	var appendMode, save bool

	cmd := &cobra.Command{
		Use:   "block URL...",
		Short: "Block the given pages",
		Long: "Replace the managed block with entries for the given pages.\n" +
			"With --append the pages are added to the ones already blocked.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseArgs(args)
			if err != nil {
				return err
			}

			s, cfgManager, err := a.prepare(true, false)
			if err != nil {
				return err
			}
			defer a.closeSession(s)

			requested := parsed
			if appendMode {
				current, err := s.hosts.Managed()
				if err != nil {
					return err
				}
				requested = append(current, parsed...)
			}

			result, err := s.hosts.Apply(blocklist.Expand(requested))
			if err := a.record(s, audit.ActionBlock, result, err); err != nil {
				return err
			}
			a.report(s, "URLs have been successfully blocked!", result)

			if save {
				return a.saveSites(cfgManager, func(cfg *config.Config) int {
					return cfg.AddSites(parsed...)
				})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendMode, "append", false, "keep the hostnames that are already blocked")
	cmd.Flags().BoolVar(&save, "save", false, "also add the pages to the config file sites")
	return cmd
}

func (a *App) newUnblockCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "unblock [URL...]",
		Short: "Unblock pages, or everything when no page is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseArgs(args)
			if err != nil {
				return err
			}

			s, cfgManager, err := a.prepare(true, false)
			if err != nil {
				return err
			}
			defer a.closeSession(s)

			var result *hostsfile.Result
			if len(parsed) == 0 {
				result, err = s.hosts.Clear()
			} else {
				var current []string
				current, err = s.hosts.Managed()
				if err == nil {
					remaining := blocklist.Without(current, blocklist.Expand(parsed))
					if len(remaining) == 0 {
						result, err = s.hosts.Clear()
					} else {
						result, err = s.hosts.Apply(remaining)
					}
				}
			}
			if err := a.record(s, audit.ActionUnblock, result, err); err != nil {
				return err
			}

			headline := "Block list updated"
			if len(result.Hostnames) == 0 {
				headline = "Managed block removed"
			}
			a.report(s, headline, result)

			if save && len(parsed) > 0 {
				return a.saveSites(cfgManager, func(cfg *config.Config) int {
					return cfg.RemoveSites(parsed...)
				})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "also remove the pages from the config file sites")
	return cmd
}

func (a *App) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List blocked hostnames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.prepare(false, false)
			if err != nil {
				return err
			}

			hosts, err := s.hosts.Managed()
			if err != nil {
				return err
			}

			if len(hosts) == 0 {
				fmt.Fprintln(a.Out, "No hostnames are blocked.")
				return nil
			}
			for _, h := range hosts {
				fmt.Fprintf(a.Out, "%s %s\n", tui.Indicator(), h)
			}
			return nil
		},
	}
}

func (a *App) newApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Block the sites listed in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.prepare(true, true)
			if err != nil {
				return err
			}
			defer a.closeSession(s)

			result, err := a.applyConfig(s, audit.ActionBlock)
			if err != nil {
				return err
			}
			a.report(s, "Config sites applied", result)
			return nil
		},
	}
}

// applyConfig makes the managed block match the config sites. An empty
// site list removes the block.
func (a *App) applyConfig(s *session, action string) (*hostsfile.Result, error) {
	hosts, err := s.cfg.Hostnames()
	if err != nil {
		return nil, err
	}

	var result *hostsfile.Result
	if len(hosts) == 0 {
		result, err = s.hosts.Clear()
	} else {
		result, err = s.hosts.Apply(hosts)
	}
	if err := a.record(s, action, result, err); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *App) newBackupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List hosts file backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.prepare(false, false)
			if err != nil {
				return err
			}

			backups, err := s.hosts.ListBackups()
			if err != nil {
				return err
			}

			if len(backups) == 0 {
				fmt.Fprintln(a.Out, "No backups found.")
				return nil
			}

			w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tCREATED")
			fmt.Fprintln(w, "----\t----\t-------")
			for _, b := range backups {
				created := time.Unix(b.Timestamp, 0).Format(time.DateTime)
				fmt.Fprintf(w, "%s\t%d\t%s\n", b.Name, b.Size, created)
			}
			return w.Flush()
		},
	}
}

func (a *App) newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore NAME",
		Short: "Restore a hosts file backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.prepare(true, false)
			if err != nil {
				return err
			}
			defer a.closeSession(s)

			result, err := s.hosts.RestoreBackup(args[0])
			if err := a.record(s, audit.ActionRestore, result, err); err != nil {
				return err
			}
			a.report(s, "Restored "+args[0], result)
			return nil
		},
	}
}

func (a *App) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write a default config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.CreateDefault(a.ConfigPath); err != nil {
					return err
				}
				fmt.Fprintln(a.Out, tui.Success("✓ Created config file: "+a.ConfigPath))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(a.Out, a.ConfigPath)
			},
		},
	)

	return cmd
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.Out, "%s version %s\n", appName, a.Version)
		},
	}
}
