package event

import (
	"github.com/sirupsen/logrus"
)

// EventHandler returns nil when the event is not supported.
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var EventHandlers []EventHandler

var InvokeHandlersFunc = invokeHandlers

func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handler := range EventHandlers {
		logrus.Debug("pre handle event ", record.Event)
		r := handler(record)

		if r == nil {
			continue
		}
		if !r.Success {
			logrus.Warnf("event handler %s failed: %s", r.HandlerIdentifier, r.Message)
		}
		results = append(results, *r)
	}
	return results
}
