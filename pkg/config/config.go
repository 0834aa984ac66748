// Package config loads the dispatcher daemon's optional configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWebhookPort = 9092
	DefaultEventQueue  = "dealflow.domain-events"
)

var ErrInvalidConfig = errors.New("invalid dispatcher config")

// ReceiverToggles enables or disables individual inbound receivers. All
// receivers are on by default; the queue receiver additionally needs a Redis
// URL at startup.
type ReceiverToggles struct {
	Schedule bool `yaml:"schedule"`
	Queue    bool `yaml:"queue"`
	Webhook  bool `yaml:"webhook"`
}

// DispatcherConfig is the YAML configuration for the dispatcher daemon.
// Absent fields keep their defaults. Connection URLs stay on flags and the
// environment so secrets never land in the file.
type DispatcherConfig struct {
	WebhookPort int             `yaml:"webhook_port"`
	EventQueue  string          `yaml:"event_queue"`
	Receivers   ReceiverToggles `yaml:"receivers"`
}

func Default() DispatcherConfig {
	return DispatcherConfig{
		WebhookPort: DefaultWebhookPort,
		EventQueue:  DefaultEventQueue,
		Receivers: ReceiverToggles{
			Schedule: true,
			Queue:    true,
			Webhook:  true,
		},
	}
}

// LoadDispatcher reads a dispatcher configuration file. Fields the file omits
// keep their default values.
func LoadDispatcher(path string) (DispatcherConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DispatcherConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DispatcherConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return DispatcherConfig{}, err
	}

	return config, nil
}

func (c DispatcherConfig) Validate() error {
	if c.WebhookPort < 1 || c.WebhookPort > 65535 {
		return fmt.Errorf("%w: webhook_port %d out of range", ErrInvalidConfig, c.WebhookPort)
	}

	if c.Receivers.Queue && c.EventQueue == "" {
		return fmt.Errorf("%w: event_queue is required when the queue receiver is enabled", ErrInvalidConfig)
	}

	if !c.Receivers.Schedule && !c.Receivers.Queue && !c.Receivers.Webhook {
		return fmt.Errorf("%w: at least one receiver must be enabled", ErrInvalidConfig)
	}

	return nil
}
