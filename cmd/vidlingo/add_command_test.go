package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidlingo/internal/testsupport"
)

func TestAddCopiesIntoUploads(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.baseDir, "My Clip.mp4")
	testsupport.WriteFile(t, src, 2048)

	out, _, err := runCLI(t, []string{"add", src, "--target", "ES"}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Queued My Clip.mp4 as job")
	requireContains(t, out, "(target es)")

	jobs, err := env.store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(jobs))
	}
	job := jobs[0]
	want := filepath.Join(env.cfg.Paths.UploadDir, job.JobID, "My_Clip.mp4")
	if job.SourcePath != want {
		t.Fatalf("source path = %q, want %q", job.SourcePath, want)
	}
	if job.OriginalName != "My Clip.mp4" || job.TargetLanguage != "es" {
		t.Fatalf("unexpected job %+v", job)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("expected source to remain after copy: %v", err)
	}
	if info, err := os.Stat(want); err != nil || info.Size() != 2048 {
		t.Fatalf("expected staged copy, stat err=%v", err)
	}
}

func TestAddMoveRemovesSource(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.baseDir, "clip.mp4")
	testsupport.WriteFile(t, src, 128)

	if _, _, err := runCLI(t, []string{"add", "--move", src}, env.configPath); err != nil {
		t.Fatalf("add --move: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source moved, stat err=%v", err)
	}
	jobs, err := env.store.List(context.Background())
	if err != nil || len(jobs) != 1 {
		t.Fatalf("expected one job, got %d (err=%v)", len(jobs), err)
	}
	if jobs[0].TargetLanguage != env.cfg.Translation.TargetLanguage {
		t.Fatalf("expected default target %q, got %q", env.cfg.Translation.TargetLanguage, jobs[0].TargetLanguage)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	env := setupCLITestEnv(t)
	notes := filepath.Join(env.baseDir, "notes.txt")
	testsupport.WriteFile(t, notes, 10)
	clip := filepath.Join(env.baseDir, "clip.mp4")
	testsupport.WriteFile(t, clip, 10)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing", args: []string{"add", filepath.Join(env.baseDir, "nope.mp4")}, want: "does not exist"},
		{name: "directory", args: []string{"add", env.baseDir}, want: "is a directory"},
		{name: "extension", args: []string{"add", notes}, want: "unsupported file extension"},
		{name: "language", args: []string{"add", clip, "--target", "not a tag!"}, want: "unsupported target language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args, env.configPath)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	jobs, err := env.store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
}
