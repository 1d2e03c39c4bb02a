package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/audit"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/config"
	"github.com/lukaszraczylo/hosts-page-blocker/internal/tui"
)

func (a *App) newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Apply the config sites and re-apply whenever the config file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx)
		},
	}
}

// watch blocks until ctx is done. Reloads are serialised on the config
// watcher goroutine.
func (a *App) watch(ctx context.Context) error {
	s, cfgManager, err := a.prepare(true, true)
	if err != nil {
		return err
	}
	defer a.closeSession(s)

	result, err := a.applyConfig(s, audit.ActionBlock)
	if err != nil {
		return err
	}
	a.report(s, "Config sites applied", result)

	onChange := func(cfg *config.Config) {
		next, err := a.newSession(cfg, false)
		if err != nil {
			a.warnf("config reload ignored: %v", err)
			return
		}
		next.audit = s.audit

		result, err := a.applyConfig(next, audit.ActionWatch)
		if err != nil {
			a.warnf("failed to apply config: %v", err)
			return
		}
		if result.Changed {
			a.report(next, "Config change applied", result)
		}
	}
	onError := func(err error) {
		a.warnf("config reload failed: %v", err)
	}

	if err := cfgManager.Watch(onChange, onError); err != nil {
		return err
	}
	defer cfgManager.Stop()

	fmt.Fprintln(a.Out, tui.Muted("Watching "+cfgManager.Path()+" (Ctrl+C to stop)"))
	<-ctx.Done()
	return nil
}
