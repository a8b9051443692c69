package queue

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// timestampLayout keeps a fixed fraction width so stored timestamps sort
// lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const jobColumns = "id, job_id, source_path, original_name, target_language, status, error_kind, error_message, subtitle_path, audio_path, video_path, object_keys, progress_stage, progress_percent, progress_message, created_at, updated_at, started_at, finished_at, heartbeat_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		jobID           string
		sourcePath      string
		originalName    sql.NullString
		targetLanguage  string
		statusStr       string
		errorKind       sql.NullString
		errorMessage    sql.NullString
		subtitlePath    sql.NullString
		audioPath       sql.NullString
		videoPath       sql.NullString
		objectKeys      sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		startedRaw      sql.NullString
		finishedRaw     sql.NullString
		heartbeatRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobID,
		&sourcePath,
		&originalName,
		&targetLanguage,
		&statusStr,
		&errorKind,
		&errorMessage,
		&subtitlePath,
		&audioPath,
		&videoPath,
		&objectKeys,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&finishedRaw,
		&heartbeatRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:             id,
		JobID:          jobID,
		SourcePath:     sourcePath,
		OriginalName:   originalName.String,
		TargetLanguage: targetLanguage,
		Status:         Status(statusStr),
		ErrorKind:      errorKind.String,
		ErrorMessage:   errorMessage.String,
		SubtitlePath:   subtitlePath.String,
		AudioPath:      audioPath.String,
		VideoPath:      videoPath.String,
		Progress: Progress{
			Stage:   progressStage.String,
			Percent: progressPercent.Float64,
			Message: progressMessage.String,
		},
	}
	if objectKeys.Valid && objectKeys.String != "" {
		if err := json.Unmarshal([]byte(objectKeys.String), &job.ObjectKeys); err != nil {
			return nil, err
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	job.StartedAt = parseNullableTime(startedRaw)
	job.FinishedAt = parseNullableTime(finishedRaw)
	job.HeartbeatAt = parseNullableTime(heartbeatRaw)
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(timestampLayout)
	return v
}

func nullableJSONList(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func parseNullableTime(raw sql.NullString) *time.Time {
	if !raw.Valid {
		return nil
	}
	t, err := parseTimeString(raw.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func nowString() string {
	return time.Now().UTC().Format(timestampLayout)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func statusArgs(statuses []Status) []any {
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}
	return args
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	defer rows.Close()
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
