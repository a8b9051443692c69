package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidlingo/internal/config"
	"vidlingo/internal/logging"
	"vidlingo/internal/notifications"
)

func TestNewServiceReturnsNoopWhenUnconfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	cfg.Notifications.AMQPURL = ""
	svc := notifications.NewService(&cfg, logging.NewNop())
	if err := svc.Publish(context.Background(), notifications.EventJobCompleted, notifications.Payload{"name": "clip.mp4"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.Close(svc); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "job queued",
			event:         notifications.EventJobQueued,
			payload:       notifications.Payload{"name": "clip.mp4", "target": "fr"},
			expectTitle:   "vidlingo - Job Queued",
			expectMessage: "Queued: clip.mp4 (to fr)",
			expectTags:    "vidlingo,job,queued",
		},
		{
			name:          "job started falls back to id",
			event:         notifications.EventJobStarted,
			payload:       notifications.Payload{"jobID": "0f8fad5b"},
			expectTitle:   "vidlingo - Job Started",
			expectMessage: "Translating: 0f8fad5b",
			expectTags:    "vidlingo,job,started",
		},
		{
			name:           "job completed",
			event:          notifications.EventJobCompleted,
			payload:        notifications.Payload{"name": "clip.mp4", "video": "/processed/clip_translated.mp4"},
			expectTitle:    "vidlingo - Complete",
			expectMessage:  "✅ Translated: clip.mp4\nVideo: /processed/clip_translated.mp4",
			expectTags:     "vidlingo,job,completed",
			expectPriority: "high",
		},
		{
			name:           "job failed",
			event:          notifications.EventJobFailed,
			payload:        notifications.Payload{"name": "clip.mp4", "kind": "extraction", "error": "video has no audio track"},
			expectTitle:    "vidlingo - Error",
			expectMessage:  "❌ Failed: clip.mp4 (extraction): video has no audio track",
			expectTags:     "vidlingo,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "vidlingo - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "vidlingo,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.JobQueued = true
			cfg.Notifications.JobStarted = true

			svc := notifications.NewService(&cfg, logging.NewNop())
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresDisabledEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for disabled event: %s", r.Header.Get("Title"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.JobQueued = false
	cfg.Notifications.JobStarted = false

	svc := notifications.NewService(&cfg, logging.NewNop())
	for _, event := range []notifications.Event{notifications.EventJobQueued, notifications.EventJobStarted, "unknown"} {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"name": "ignored"}); err != nil {
			t.Fatalf("expected no error for disabled event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg, logging.NewNop())
	if err := svc.Publish(context.Background(), notifications.EventJobFailed, nil); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
