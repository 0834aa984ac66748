package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealflow/dealflow/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dealflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDispatcherKeepsDefaultsForOmittedFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "webhook_port: 8181\n")

	cfg, err := config.LoadDispatcher(path)
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.WebhookPort)
	assert.Equal(t, config.DefaultEventQueue, cfg.EventQueue)
	assert.True(t, cfg.Receivers.Schedule)
	assert.True(t, cfg.Receivers.Queue)
	assert.True(t, cfg.Receivers.Webhook)
}

func TestLoadDispatcherDisablesSingleReceiver(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "receivers:\n  queue: false\n")

	cfg, err := config.LoadDispatcher(path)
	require.NoError(t, err)

	assert.True(t, cfg.Receivers.Schedule)
	assert.False(t, cfg.Receivers.Queue)
	assert.True(t, cfg.Receivers.Webhook)
}

func TestLoadDispatcherRejectsBadPort(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "webhook_port: 99999\n")

	_, err := config.LoadDispatcher(path)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoadDispatcherRejectsAllReceiversDisabled(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "receivers:\n  schedule: false\n  queue: false\n  webhook: false\n")

	_, err := config.LoadDispatcher(path)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoadDispatcherMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadDispatcher(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
