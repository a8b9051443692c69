package config

import (
	"errors"
	"fmt"
	"strings"

	"vidlingo/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranslation() error {
	switch c.Translation.Provider {
	case "google":
	case "llm":
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			return errors.New("llm.api_key must be set when translation.provider is \"llm\" (or set LLM_API_KEY)")
		}
	default:
		return fmt.Errorf("translation.provider %q is not supported (use one of: %s)", c.Translation.Provider, supportedTranslationProviders)
	}
	if !language.Valid(c.Translation.TargetLanguage) {
		return fmt.Errorf("translation.target_language %q is not a valid language code", c.Translation.TargetLanguage)
	}
	if c.Translation.SourceLanguage != defaultSourceLanguage && !language.Valid(c.Translation.SourceLanguage) {
		return fmt.Errorf("translation.source_language %q is not a valid language code", c.Translation.SourceLanguage)
	}
	if lang := c.Synthesis.Language; lang != "" && !language.Valid(lang) {
		return fmt.Errorf("synthesis.language %q is not a valid language code", lang)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.workers":              c.Workflow.Workers,
		"workflow.queue_capacity":       c.Workflow.QueueCapacity,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	if c.Workflow.StageTimeout < 0 {
		return errors.New("workflow.stage_timeout must be >= 0 (0 disables the limit)")
	}
	if c.Workflow.RetentionDays < 0 {
		return errors.New("workflow.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.AMQPURL != "" && !strings.HasPrefix(c.Notifications.AMQPURL, "amqp://") && !strings.HasPrefix(c.Notifications.AMQPURL, "amqps://") {
		return errors.New("notifications.amqp_url must start with amqp:// or amqps://")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint must be set when storage.enabled is true")
	}
	if strings.Contains(c.Storage.Endpoint, "://") {
		return errors.New("storage.endpoint must be host[:port] without a scheme (use storage.use_ssl)")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set when storage.enabled is true")
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return errors.New("storage.access_key and storage.secret_key must be set when storage.enabled is true (or set S3_ACCESS_KEY/S3_SECRET_KEY)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
