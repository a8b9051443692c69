package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"vidlingo/internal/config"
	"vidlingo/internal/deps"
	"vidlingo/internal/services/googletranslate"
	"vidlingo/internal/services/httpretry"
	"vidlingo/internal/services/llm"
	"vidlingo/internal/translate"
)

// HealthChecker is implemented by remote backends that can be pinged.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckTranslationFromConfig pings the configured translation provider with a
// single attempt.
func CheckTranslationFromConfig(ctx context.Context, cfg *config.Config) Result {
	switch cfg.Translation.Provider {
	case translate.ProviderLLM:
		return CheckLLM(ctx, "Translation LLM", cfg.GetLLM())
	case "", translate.ProviderGoogle:
		client := googletranslate.NewClient(googletranslate.Config{
			BaseURL:        cfg.Translation.BaseURL,
			TimeoutSeconds: cfg.Translation.TimeoutSeconds,
		}, googletranslate.WithRetryPolicy(httpretry.Policy{MaxAttempts: 1}))
		return CheckBackend(ctx, "Google Translate", client)
	default:
		return Result{Name: "Translation", Detail: fmt.Sprintf("unknown provider %q", cfg.Translation.Provider)}
	}
}

// CheckBackend runs backend.HealthCheck under a 30-second timeout.
func CheckBackend(ctx context.Context, name string, backend HealthChecker) Result {
	if backend == nil {
		return Result{Name: name, Detail: "not configured"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := backend.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))
	return CheckBackend(ctx, name, client)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the pipeline executes.
// Both the daemon and the CLI status command use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio extraction and replacement",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
		{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Required for WhisperX-driven transcription",
		},
	}
	if cfg.Transcription.CUDAEnabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "nvidia-smi",
			Command:     "nvidia-smi",
			Description: "Reports GPU availability for CUDA transcription",
			Optional:    true,
		})
	}
	return deps.CheckBinaries(requirements)
}

// summarizeError produces a human-readable summary for health check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
