package workflow

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dealflow/dealflow/pkg/actions/branchif"
	"github.com/dealflow/dealflow/pkg/actions/callwebhook"
	"github.com/dealflow/dealflow/pkg/actions/createtask"
	"github.com/dealflow/dealflow/pkg/actions/mutaterecord"
	"github.com/dealflow/dealflow/pkg/actions/notify"
	"github.com/dealflow/dealflow/pkg/actions/sendmessage"
	"github.com/dealflow/dealflow/pkg/actions/wait"
	"github.com/dealflow/dealflow/pkg/connectors"
	"github.com/dealflow/dealflow/pkg/eventbus"
	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
	"github.com/dealflow/dealflow/pkg/persistence/file"
	"github.com/dealflow/dealflow/pkg/registry"
)

type sentCall struct {
	channel   string
	recipient string
	template  string
}

type fakeSender struct {
	sent []sentCall
	err  error
}

func (f *fakeSender) Send(_ context.Context, channel, recipient, template string) (connectors.SendReceipt, error) {
	if f.err != nil {
		return connectors.SendReceipt{}, f.err
	}

	f.sent = append(f.sent, sentCall{channel: channel, recipient: recipient, template: template})

	return connectors.SendReceipt{Sent: true, ID: "msg-1"}, nil
}

type fakeMutator struct {
	calls int
	err   error
}

func (f *fakeMutator) SetProperty(_ context.Context, _, _, _, _ string) (connectors.MutateReceipt, error) {
	if f.err != nil {
		return connectors.MutateReceipt{}, f.err
	}

	f.calls++

	return connectors.MutateReceipt{Updated: true}, nil
}

type fakeTaskCreator struct {
	titles []string
	dueAts []time.Time
}

func (f *fakeTaskCreator) CreateTask(_ context.Context, title, _ string, dueAt time.Time) (connectors.TaskReceipt, error) {
	f.titles = append(f.titles, title)
	f.dueAts = append(f.dueAts, dueAt)

	return connectors.TaskReceipt{Created: true, ID: "task-1"}, nil
}

type fakeCaller struct{}

func (fakeCaller) Call(_ context.Context, _, _ string, _ map[string]string, _ any) (connectors.CallResult, error) {
	return connectors.CallResult{Status: 200, OK: true}, nil
}

type fakeNotifier struct{}

func (fakeNotifier) Notify(_ context.Context, _, _ string, _ []string) (connectors.NotifyReceipt, error) {
	return connectors.NotifyReceipt{Notified: true}, nil
}

type engine struct {
	store      *Store
	runner     *Runner
	dispatcher *Dispatcher
	persist    persistence.Persistence

	sender  *fakeSender
	mutator *fakeMutator
	tasks   *fakeTaskCreator
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	return newEngineWithBus(t, nil)
}

func newEngineWithBus(t *testing.T, publisher eventbus.EventPublisher) *engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	persist := file.NewPersistence(t.TempDir())

	sender := &fakeSender{}
	mutator := &fakeMutator{}
	tasks := &fakeTaskCreator{}

	actions := registry.NewActionRegistry(logger,
		sendmessage.NewFactory(sender),
		mutaterecord.NewFactory(mutator),
		createtask.NewFactory(tasks),
		wait.NewFactory(),
		branchif.NewFactory(),
		callwebhook.NewFactory(fakeCaller{}),
		notify.NewFactory(fakeNotifier{}),
	)
	triggers := registry.NewTriggerRegistry(logger)

	store := NewStore(logger, persist, triggers, actions)
	runner := NewRunner(logger, persist, actions, publisher)
	dispatcher := NewDispatcher(logger, persist, runner, publisher)

	return &engine{
		store:      store,
		runner:     runner,
		dispatcher: dispatcher,
		persist:    persist,
		sender:     sender,
		mutator:    mutator,
		tasks:      tasks,
	}
}

// activeWorkflow creates a workflow and immediately activates it.
func (e *engine) activeWorkflow(t *testing.T, name, triggerKind string, triggerConfig map[string]any) *models.Workflow {
	t.Helper()

	ctx := context.Background()

	created, err := e.store.CreateWorkflow(ctx, &models.Workflow{
		Name:          name,
		TriggerKind:   triggerKind,
		TriggerConfig: triggerConfig,
	})
	require.NoError(t, err)

	created.Active = true

	updated, err := e.store.UpdateWorkflow(ctx, created.ID, created)
	require.NoError(t, err)

	return updated
}

func (e *engine) addStep(t *testing.T, workflowID, kind string, config map[string]any) *models.ActionStep {
	t.Helper()

	step, err := e.store.AddStep(context.Background(), &models.ActionStep{
		WorkflowID: workflowID,
		Kind:       kind,
		Config:     config,
	})
	require.NoError(t, err)

	return step
}
