package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory whose entries are pruned by age.
type RetentionTarget struct {
	Dir     string
	Pattern string
	// Dirs prunes subdirectories (recursively) instead of files.
	Dirs    bool
	Exclude []string
}

// Prune removes entries matching the targets whose modification time is older
// than retentionDays. A retentionDays value of 0 disables pruning. The number
// of removed entries is returned.
func Prune(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) int {
	if retentionDays <= 0 {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0

	for _, target := range targets {
		dir := strings.TrimSpace(target.Dir)
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		skip := make(map[string]struct{}, len(target.Exclude))
		for _, name := range target.Exclude {
			skip[filepath.Base(strings.TrimSpace(name))] = struct{}{}
		}
		for _, entry := range entries {
			if entry.IsDir() != target.Dirs {
				continue
			}
			name := entry.Name()
			if _, excluded := skip[name]; excluded {
				continue
			}
			if pat := strings.TrimSpace(target.Pattern); pat != "" {
				if matched, err := filepath.Match(pat, name); err != nil || !matched {
					continue
				}
			}
			info, err := entry.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			fullPath := filepath.Join(dir, name)
			if target.Dirs {
				err = os.RemoveAll(fullPath)
			} else {
				err = os.Remove(fullPath)
			}
			if err != nil {
				WarnWithContext(logger, "retention prune failed; entry remains", "retention_prune_failed",
					String("path", fullPath),
					Error(err),
					String(FieldErrorHint, "check directory permissions"),
					String(FieldImpact, "old entry remains on disk"),
				)
				continue
			}
			removed++
			if logger != nil {
				logger.Debug("retention pruned entry",
					String("path", fullPath),
					String(FieldEventType, "retention_pruned"),
				)
			}
		}
	}
	return removed
}
