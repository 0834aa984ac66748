package cmd

import (
	"log/slog"

	"github.com/dealflow/dealflow/pkg/actions/branchif"
	"github.com/dealflow/dealflow/pkg/actions/callwebhook"
	"github.com/dealflow/dealflow/pkg/actions/createtask"
	"github.com/dealflow/dealflow/pkg/actions/mutaterecord"
	"github.com/dealflow/dealflow/pkg/actions/notify"
	"github.com/dealflow/dealflow/pkg/actions/sendmessage"
	"github.com/dealflow/dealflow/pkg/actions/wait"
	"github.com/dealflow/dealflow/pkg/connectors"
	"github.com/dealflow/dealflow/pkg/connectors/httpcaller"
	"github.com/dealflow/dealflow/pkg/connectors/logport"
	"github.com/dealflow/dealflow/pkg/connectors/redisnotify"
	"github.com/dealflow/dealflow/pkg/registry"
)

// NewRegistries seeds the trigger catalog and the action catalog with every
// supported kind. The webhook caller is always real; notifications go through
// Redis pub/sub when a URL is configured and fall back to the log otherwise;
// message, record and task ports log until their integrations land.
func NewRegistries(logger *slog.Logger, redisURL string) (*registry.Registry, *registry.ActionRegistry, error) {
	var notifier connectors.Notifier = logport.NewNotifier(logger)

	if redisURL != "" {
		redisNotifier, err := redisnotify.New(redisURL, logger)
		if err != nil {
			return nil, nil, err
		}

		notifier = redisNotifier
	}

	triggers := registry.NewTriggerRegistry(logger)
	actions := registry.NewActionRegistry(logger,
		sendmessage.NewFactory(logport.NewSender(logger)),
		mutaterecord.NewFactory(logport.NewMutator(logger)),
		createtask.NewFactory(logport.NewTaskCreator(logger)),
		wait.NewFactory(),
		branchif.NewFactory(),
		callwebhook.NewFactory(httpcaller.New()),
		notify.NewFactory(notifier),
	)

	return triggers, actions, nil
}
