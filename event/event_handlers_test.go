package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvokeHandlers(t *testing.T) {
	t.Run("should collect results of all supporting handlers in order", func(t *testing.T) {
		EventHandlers = []EventHandler{
			func(e *EventRecord) *EventHandleResult {
				return &EventHandleResult{Success: true, HandlerIdentifier: "first"}
			},
			func(e *EventRecord) *EventHandleResult {
				return nil // not interested in this event
			},
			func(e *EventRecord) *EventHandleResult {
				return &EventHandleResult{Success: false, Message: "boom", HandlerIdentifier: "third"}
			},
		}
		defer func() {
			EventHandlers = nil
		}()

		results := invokeHandlers(&EventRecord{Event: Event{SourceType: "CASE", SourceId: 100}})
		assert.Equal(t, []EventHandleResult{
			{Success: true, HandlerIdentifier: "first"},
			{Success: false, Message: "boom", HandlerIdentifier: "third"},
		}, results)
	})

	t.Run("should return empty result when no handler registered", func(t *testing.T) {
		EventHandlers = nil
		assert.Equal(t, []EventHandleResult{}, invokeHandlers(&EventRecord{}))
	})
}
