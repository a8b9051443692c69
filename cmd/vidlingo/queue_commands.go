package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidlingo/internal/api"
	"vidlingo/internal/config"
	"vidlingo/internal/queue"
	"vidlingo/internal/subtitles"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				svc := api.NewQueueService(store, cfg.Paths.ProcessedDir)
				jobs, err := svc.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				jobs = api.SortJobsNewestFirst(jobs)
				if asJSON {
					if jobs == nil {
						jobs = []api.Job{}
					}
					return writeJSON(cmd, api.JobListResponse{Jobs: jobs})
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderJobTable(jobs, time.Now()))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func renderJobTable(jobs []api.Job, now time.Time) string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			shortID(job.JobID),
			job.Name,
			job.TargetLanguage,
			progressCell(job),
			displayAge(job.CreatedAt, now),
		})
	}
	return renderTable([]column{
		{Header: "ID"},
		{Header: "File", MaxWidth: 40},
		{Header: "Target"},
		{Header: "Status"},
		{Header: "Created", Align: alignRight},
	}, rows)
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				job, err := resolveJob(cmd, store, cfg, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, job)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderJobDetail(*job, checkSubtitles(job.SubtitlePath)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

// subtitleCheck summarizes a job's subtitle file. Cues is -1 when the file
// is absent or unreadable.
type subtitleCheck struct {
	Cues   int
	Issues []string
}

func checkSubtitles(path string) subtitleCheck {
	if path == "" {
		return subtitleCheck{Cues: -1}
	}
	file, err := os.Open(path)
	if err != nil {
		return subtitleCheck{Cues: -1}
	}
	defer file.Close()
	cues, err := subtitles.ParseSRT(file)
	if err != nil {
		return subtitleCheck{Cues: -1, Issues: []string{err.Error()}}
	}
	return subtitleCheck{Cues: len(cues), Issues: subtitles.Validate(cues)}
}

func renderJobDetail(job api.Job, srt subtitleCheck) string {
	rows := [][]string{
		{"Job", job.JobID},
		{"File", job.Name},
		{"Source", job.SourcePath},
		{"Target", job.TargetLanguage},
		{"Status", job.Status},
		{"Stage", dash(job.Progress.Stage)},
		{"Progress", fmt.Sprintf("%.0f%%", job.Progress.Percent)},
		{"Message", dash(job.Progress.Message)},
		{"Created", displayTime(job.CreatedAt)},
		{"Started", displayTime(job.StartedAt)},
		{"Finished", displayTime(job.FinishedAt)},
	}
	if job.ErrorMessage != "" {
		rows = append(rows, []string{"Error", fmt.Sprintf("%s: %s", dash(job.ErrorKind), job.ErrorMessage)})
	}
	for _, artifact := range []struct{ label, path string }{
		{"Subtitles", job.SubtitlePath},
		{"Audio", job.AudioPath},
		{"Video", job.VideoPath},
	} {
		if artifact.path != "" {
			rows = append(rows, []string{artifact.label, artifact.path})
		}
	}
	if srt.Cues >= 0 {
		rows = append(rows, []string{"Cues", fmt.Sprint(srt.Cues)})
	}
	if len(srt.Issues) > 0 {
		rows = append(rows, []string{"Subtitle issues", strings.Join(srt.Issues, "\n")})
	}
	if len(job.ObjectKeys) > 0 {
		rows = append(rows, []string{"Objects", strings.Join(job.ObjectKeys, "\n")})
	}
	return renderTable([]column{{Header: "Field"}, {Header: "Value", MaxWidth: 70}}, rows)
}

// resolveJob accepts a full job ID or a unique prefix of one.
func resolveJob(cmd *cobra.Command, store *queue.Store, cfg *config.Config, ref string) (*api.Job, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("job id is required")
	}
	svc := api.NewQueueService(store, cfg.Paths.ProcessedDir)
	job, err := svc.Describe(cmd.Context(), ref)
	if err != nil || job != nil {
		return job, err
	}
	jobs, err := svc.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	var match *api.Job
	for i := range jobs {
		if strings.HasPrefix(jobs[i].JobID, ref) {
			if match != nil {
				return nil, fmt.Errorf("job id %q is ambiguous", ref)
			}
			match = &jobs[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("job %s: %w", ref, queue.ErrJobNotFound)
	}
	return match, nil
}

func resolveJobIDs(cmd *cobra.Command, store *queue.Store, cfg *config.Config, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		job, err := resolveJob(cmd, store, cfg, ref)
		if errors.Is(err, queue.ErrJobNotFound) {
			ids = append(ids, ref)
			continue
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, job.JobID)
	}
	return ids, nil
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [job-id...]",
		Short: "Move failed jobs back to pending (all failed jobs when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					updated, err := store.RetryFailed(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Retried %d failed job(s)\n", updated)
					return nil
				}
				ids, err := resolveJobIDs(cmd, store, cfg, args)
				if err != nil {
					return err
				}
				result, err := api.RetryFailedJobs(cmd.Context(), api.NewQueueService(store, cfg.Paths.ProcessedDir), ids)
				if err != nil {
					return err
				}
				for _, job := range result.Jobs {
					switch job.Outcome {
					case api.RetryUpdated:
						fmt.Fprintf(out, "%s: retried\n", job.JobID)
					case api.RetryNotFound:
						fmt.Fprintf(out, "%s: not found\n", job.JobID)
					case api.RetryNotFailed:
						fmt.Fprintf(out, "%s: not failed (status %s)\n", job.JobID, job.Status)
					}
				}
				fmt.Fprintf(out, "Retried %d job(s)\n", result.UpdatedCount)
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <job-id...>",
		Short: "Remove jobs that are not processing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				ids, err := resolveJobIDs(cmd, store, cfg, args)
				if err != nil {
					return err
				}
				result, err := api.RemoveJobs(cmd.Context(), api.NewQueueService(store, cfg.Paths.ProcessedDir), ids)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, job := range result.Jobs {
					switch job.Outcome {
					case api.RemoveRemoved:
						fmt.Fprintf(out, "%s: removed\n", job.JobID)
					case api.RemoveNotFound:
						fmt.Fprintf(out, "%s: not found\n", job.JobID)
					case api.RemoveActive:
						fmt.Fprintf(out, "%s: still processing, not removed\n", job.JobID)
					}
				}
				fmt.Fprintf(out, "Removed %d job(s)\n", result.RemovedCount)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished jobs (completed and failed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if completedOnly && failedOnly {
				return errors.New("--completed and --failed are mutually exclusive")
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				var total int64
				if !failedOnly {
					n, err := store.ClearCompleted(cmd.Context())
					if err != nil {
						return err
					}
					total += n
				}
				if !completedOnly {
					n, err := store.ClearFailed(cmd.Context())
					if err != nil {
						return err
					}
					total += n
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d job(s)\n", total)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Only clear completed jobs")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only clear failed jobs")
	return cmd
}

func parseStatuses(values []string) ([]queue.Status, error) {
	var statuses []queue.Status
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		status, ok := queue.ParseStatus(trimmed)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", trimmed)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
