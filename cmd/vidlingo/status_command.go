package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidlingo/internal/config"
	"vidlingo/internal/deps"
	"vidlingo/internal/preflight"
	"vidlingo/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				var lines []string

				lines = append(lines, renderSectionHeader("Daemon", colorize)...)
				lock := preflight.CheckDaemonLock(cfg.LockPath())
				lines = append(lines, renderStatusLine(lock.Name, passFail(lock.Passed, statusWarn), lock.Detail, colorize))
				lines = append(lines, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
				lines = append(lines, renderStatusLine("API", statusInfo, cfg.Paths.APIBind, colorize))
				lines = append(lines, "")

				lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
				depStatuses := preflight.CheckSystemDeps(cfg)
				for _, dep := range depStatuses {
					switch {
					case dep.Available:
						lines = append(lines, renderStatusLine(dep.Name, statusOK, dep.Path, colorize))
					case dep.Optional:
						lines = append(lines, renderStatusLine(dep.Name, statusWarn, dep.Detail, colorize))
					default:
						lines = append(lines, renderStatusLine(dep.Name, statusError, dep.Detail, colorize))
					}
				}
				for _, result := range preflight.RunAll(cmd.Context(), cfg) {
					lines = append(lines, renderStatusLine(result.Name, passFail(result.Passed, statusError), result.Detail, colorize))
				}
				lines = append(lines, "")

				lines = append(lines, renderSectionHeader("Queue", colorize)...)
				summary, err := store.Summary(cmd.Context())
				if err != nil {
					return fmt.Errorf("queue summary: %w", err)
				}
				if summary.Total == 0 {
					lines = append(lines, renderStatusLine("Jobs", statusInfo, "Queue is empty", colorize))
				} else {
					lines = append(lines,
						renderStatusLine("Pending", statusInfo, fmt.Sprint(summary.Pending), colorize),
						renderStatusLine("Processing", statusInfo, fmt.Sprint(summary.Processing), colorize),
						renderStatusLine("Completed", statusOK, fmt.Sprint(summary.Completed), colorize),
					)
					lines = append(lines, renderStatusLine("Failed", passFail(summary.Failed == 0, statusWarn), fmt.Sprint(summary.Failed), colorize))
				}

				fmt.Fprintln(out, strings.Join(lines, "\n"))

				if missing := deps.MissingRequired(depStatuses); len(missing) > 0 {
					names := make([]string, 0, len(missing))
					for _, dep := range missing {
						names = append(names, dep.Name)
					}
					return fmt.Errorf("missing required dependencies: %s", strings.Join(names, ", "))
				}
				return nil
			})
		},
	}
}
