package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"vidlingo/internal/config"
	"vidlingo/internal/logging"
)

// Event identifies a job lifecycle milestone.
type Event string

const (
	EventJobQueued    Event = "job_queued"
	EventJobStarted   Event = "job_started"
	EventJobCompleted Event = "job_completed"
	EventJobFailed    Event = "job_failed"
	EventTest         Event = "test"
)

// Payload carries event fields. Common keys are jobID, name, target,
// kind, error, and video.
type Payload map[string]any

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// Closer is implemented by services holding connections.
type Closer interface {
	Close() error
}

// NewService builds a fan-out over ntfy and AMQP for whichever are
// configured. With neither configured a noop implementation is returned.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	if cfg == nil {
		return noopService{}
	}
	var services []Service
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) != "" {
		services = append(services, newNtfyService(cfg.Notifications))
	}
	if strings.TrimSpace(cfg.Notifications.AMQPURL) != "" {
		services = append(services, NewAMQPPublisher(cfg.Notifications.AMQPURL, cfg.Notifications.AMQPQueue, logger))
	}
	switch len(services) {
	case 0:
		return noopService{}
	case 1:
		return services[0]
	default:
		return &fanout{services: services, logger: logging.NewComponentLogger(logger, "notifications")}
	}
}

// Close releases connections held by svc, if any.
func Close(svc Service) error {
	if closer, ok := svc.(Closer); ok {
		return closer.Close()
	}
	return nil
}

type fanout struct {
	services []Service
	logger   *slog.Logger
}

// Publish delivers to every transport and joins their errors.
func (f *fanout) Publish(ctx context.Context, event Event, payload Payload) error {
	var errs []error
	for _, svc := range f.services {
		if err := svc.Publish(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) Close() error {
	var errs []error
	for _, svc := range f.services {
		if err := Close(svc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
