package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dealflow/dealflow/pkg/events"
	"github.com/dealflow/dealflow/pkg/mocks"
)

func TestRunPublishesLifecycleEvents(t *testing.T) {
	t.Parallel()

	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	eng := newEngineWithBus(t, publisher)

	created := eng.activeWorkflow(t, "Event audit", "manual", nil)
	eng.addStep(t, created.ID, "send-message", map[string]any{
		"recipient": "ops@example.com",
		"template":  "ping",
	})

	execution, err := eng.runner.Run(context.Background(), created.ID, nil)
	require.NoError(t, err)

	types := publishedTypes(publisher)
	require.Len(t, types, 2)
	assert.Equal(t, events.ExecutionStartedEvent, types[0])
	assert.Equal(t, events.ExecutionCompletedEvent, types[1])

	started, ok := publisher.Calls[0].Arguments.Get(2).(events.ExecutionStarted)
	require.True(t, ok)
	assert.Equal(t, execution.ID, started.ExecutionID)
	assert.Equal(t, created.ID, started.WorkflowID)
}

func TestRunPublishesFailureEvent(t *testing.T) {
	t.Parallel()

	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	eng := newEngineWithBus(t, publisher)
	eng.mutator.err = errors.New("crm unreachable")

	created := eng.activeWorkflow(t, "Doomed run", "manual", nil)
	eng.addStep(t, created.ID, "mutate-record", map[string]any{
		"entity":   "deal",
		"selector": "{{deal_id}}",
		"property": "stage",
		"value":    "won",
	})

	_, err := eng.runner.Run(context.Background(), created.ID, map[string]any{"deal_id": "d-1"})
	require.Error(t, err)

	types := publishedTypes(publisher)
	require.Len(t, types, 2)
	assert.Equal(t, events.ExecutionStartedEvent, types[0])
	assert.Equal(t, events.ExecutionFailedEvent, types[1])
}

// A broken event channel never fails the run itself.
func TestRunSurvivesPublishErrors(t *testing.T) {
	t.Parallel()

	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	eng := newEngineWithBus(t, publisher)

	created := eng.activeWorkflow(t, "Stoic run", "manual", nil)
	eng.addStep(t, created.ID, "notify", map[string]any{"message": "still here"})

	execution, err := eng.runner.Run(context.Background(), created.ID, nil)
	require.NoError(t, err)
	assert.True(t, execution.Terminal())
}

func TestDispatchPublishesMatchEvents(t *testing.T) {
	t.Parallel()

	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	eng := newEngineWithBus(t, publisher)

	created := eng.activeWorkflow(t, "Match audit", "domain-event", map[string]any{
		"event": "contact-created",
	})
	eng.addStep(t, created.ID, "notify", map[string]any{"message": "new contact"})

	executions, err := eng.dispatcher.Dispatch(context.Background(), "contact-created", map[string]any{
		"email": "new@example.com",
	})
	require.NoError(t, err)
	require.Len(t, executions, 1)

	types := publishedTypes(publisher)
	require.Len(t, types, 3)
	assert.Equal(t, events.WorkflowMatchedEvent, types[0])
	assert.Equal(t, events.ExecutionStartedEvent, types[1])
	assert.Equal(t, events.ExecutionCompletedEvent, types[2])
}

func publishedTypes(publisher *mocks.MockEventPublisher) []events.EventType {
	types := make([]events.EventType, 0, len(publisher.Calls))

	for _, call := range publisher.Calls {
		if event, ok := call.Arguments.Get(2).(interface{ GetType() events.EventType }); ok {
			types = append(types, event.GetType())
		}
	}

	return types
}
