package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vidlingo/internal/language"
	"vidlingo/internal/pipeline"
	"vidlingo/internal/services"
)

// desktopExtension is the only input the synchronous translator accepts.
const desktopExtension = ".mp4"

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var target string

	cmd := &cobra.Command{
		Use:   "translate <file.mp4>",
		Short: "Translate a video and write subtitles, narration, and a dubbed copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := validateDesktopInput(args[0])
			if err != nil {
				return err
			}
			if target = strings.TrimSpace(target); target != "" {
				if !language.Valid(target) {
					return fmt.Errorf("target language %q is not a valid language code", target)
				}
				target = language.Normalize(target)
			}
			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = filepath.Dir(input)
			}
			if dir, err = filepath.Abs(dir); err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			pcfg := pipeline.ConfigFromApp(cfg)
			pcfg.AllowedExtensions = []string{desktopExtension}
			orchestrator, err := pipeline.Build(cfg, pcfg, logger)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			progress := newStageProgress(stderr, shouldColorize(stderr))
			result, err := orchestrator.Run(cmd.Context(), pipeline.Request{
				JobID:          uuid.NewString(),
				InputPath:      input,
				OutputDir:      dir,
				TargetLanguage: target,
			}, progress.observer())
			progress.finish(err == nil)
			if err != nil {
				return fmt.Errorf("translation failed (%s): %w", services.KindOf(err), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Processing completed successfully!")
			fmt.Fprintf(out, "Subtitles: %s\n", result.SubtitlePath)
			fmt.Fprintf(out, "Audio:     %s\n", result.AudioPath)
			fmt.Fprintf(out, "Video:     %s\n", result.VideoPath)
			if result.DetectedLanguage != "" {
				fmt.Fprintf(out, "Detected %s speech, %d segments\n", language.DisplayName(result.DetectedLanguage), result.SegmentCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the outputs (defaults to the input's directory)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Target language code (defaults to translation.target_language)")
	return cmd
}

func validateDesktopInput(path string) (string, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("resolve input: %w", err)
	}
	if strings.ToLower(filepath.Ext(abs)) != desktopExtension {
		return "", fmt.Errorf("unsupported input %s: only %s files can be translated", filepath.Base(abs), desktopExtension)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("input %s does not exist", abs)
		}
		return "", fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("input %s is a directory", abs)
	}
	return abs, nil
}
