package main

import (
	"path/filepath"
	"strings"
	"testing"

	"vidlingo/internal/testsupport"
)

func TestTranslateRejectsInvalidInput(t *testing.T) {
	env := setupCLITestEnv(t)
	mkv := filepath.Join(env.baseDir, "clip.mkv")
	testsupport.WriteFile(t, mkv, 10)
	clip := filepath.Join(env.baseDir, "clip.mp4")
	testsupport.WriteFile(t, clip, 10)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "non mp4", args: []string{"translate", mkv}, want: "only .mp4 files"},
		{name: "missing", args: []string{"translate", filepath.Join(env.baseDir, "gone.mp4")}, want: "does not exist"},
		{name: "directory", args: []string{"translate", filepath.Join(env.baseDir, "dir.mp4")}, want: "is a directory"},
		{name: "bad target", args: []string{"translate", clip, "--target", "not a tag!"}, want: "not a valid language code"},
		{name: "no args", args: []string{"translate"}, want: "accepts 1 arg"},
	}
	testsupport.WriteFile(t, filepath.Join(env.baseDir, "dir.mp4", "inner"), 1)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args, env.configPath)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateDesktopInputAcceptsUppercaseExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CLIP.MP4")
	testsupport.WriteFile(t, path, 10)

	got, err := validateDesktopInput(path)
	if err != nil {
		t.Fatalf("validateDesktopInput: %v", err)
	}
	if got != path {
		t.Fatalf("got %q, want %q", got, path)
	}
}
