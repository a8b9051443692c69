package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vidlingo/internal/config"
	"vidlingo/internal/fileutil"
	"vidlingo/internal/language"
	"vidlingo/internal/queue"
	"vidlingo/internal/textutil"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var target string
	var move bool

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Queue a video for the daemon to translate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				if !cfg.AllowsExtension(info.Name()) {
					return fmt.Errorf("unsupported file extension %q", strings.ToLower(filepath.Ext(info.Name())))
				}
				lang := strings.TrimSpace(target)
				if lang == "" {
					lang = cfg.Translation.TargetLanguage
				}
				if !language.Valid(lang) {
					return fmt.Errorf("unsupported target language %q", lang)
				}
				lang = language.Normalize(lang)

				name := textutil.SecureFileName(info.Name())
				if name == "" {
					return fmt.Errorf("cannot derive a safe file name from %q", info.Name())
				}
				jobID := uuid.NewString()
				dest := filepath.Join(cfg.Paths.UploadDir, jobID, name)
				if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
					return fmt.Errorf("create upload dir: %w", err)
				}
				if move {
					err = fileutil.MoveFile(absPath, dest)
				} else {
					err = fileutil.CopyFileVerified(absPath, dest)
				}
				if err != nil {
					_ = os.RemoveAll(filepath.Dir(dest))
					return fmt.Errorf("stage upload: %w", err)
				}

				job, err := store.NewJobWithID(cmd.Context(), jobID, dest, info.Name(), lang)
				if err != nil {
					_ = os.RemoveAll(filepath.Dir(dest))
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as job %s (target %s)\n", info.Name(), job.JobID, job.TargetLanguage)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target language code (defaults to translation.target_language)")
	cmd.Flags().BoolVar(&move, "move", false, "Move the file into the upload directory instead of copying")
	return cmd
}
