package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vidlingo/internal/config"
)

const userAgent = "vidlingo/0.1.0"

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func newNtfyService(cfg config.Notifications) *ntfyService {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: strings.TrimSpace(cfg.NtfyTopic),
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventJobQueued:    cfg.JobQueued,
			EventJobStarted:   cfg.JobStarted,
			EventJobCompleted: cfg.JobCompleted,
			EventJobFailed:    cfg.JobFailed,
			EventTest:         true,
		},
	}
}

func (n *ntfyService) Publish(ctx context.Context, event Event, p Payload) error {
	if n == nil || !n.enabled[event] {
		return nil
	}
	data, ok := format(event, p)
	if !ok {
		return nil
	}
	return n.send(ctx, data)
}

func format(event Event, p Payload) (payload, bool) {
	name := p.text("name")
	if name == "" {
		name = p.text("jobID")
	}
	switch event {
	case EventJobQueued:
		message := fmt.Sprintf("Queued: %s", name)
		if target := p.text("target"); target != "" {
			message = fmt.Sprintf("%s (to %s)", message, target)
		}
		return payload{
			title:   "vidlingo - Job Queued",
			message: message,
			tags:    []string{"vidlingo", "job", "queued"},
		}, true
	case EventJobStarted:
		return payload{
			title:   "vidlingo - Job Started",
			message: fmt.Sprintf("Translating: %s", name),
			tags:    []string{"vidlingo", "job", "started"},
		}, true
	case EventJobCompleted:
		message := fmt.Sprintf("✅ Translated: %s", name)
		if video := p.text("video"); video != "" {
			message = fmt.Sprintf("%s\nVideo: %s", message, video)
		}
		return payload{
			title:    "vidlingo - Complete",
			message:  message,
			tags:     []string{"vidlingo", "job", "completed"},
			priority: "high",
		}, true
	case EventJobFailed:
		var b strings.Builder
		b.WriteString("❌ Failed: ")
		b.WriteString(name)
		if kind := p.text("kind"); kind != "" {
			b.WriteString(" (")
			b.WriteString(kind)
			b.WriteString(")")
		}
		if msg := p.text("error"); msg != "" {
			b.WriteString(": ")
			b.WriteString(msg)
		}
		return payload{
			title:    "vidlingo - Error",
			message:  b.String(),
			tags:     []string{"vidlingo", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:    "vidlingo - Test",
			message:  "🧪 Notification system test",
			tags:     []string{"vidlingo", "test"},
			priority: "low",
		}, true
	default:
		return payload{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
