package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// eventAdapter adapts zerolog events to the LogEvent interface.
type eventAdapter struct {
	event  *zerolog.Event
	filter *SensitiveFilter
}

// Msg logs the message
func (e *eventAdapter) Msg(msg string) {
	e.event.Msg(msg)
}

// Msgf logs a formatted message
func (e *eventAdapter) Msgf(format string, args ...any) {
	e.event.Msgf(format, args...)
}

// Err adds an error to the log event
func (e *eventAdapter) Err(err error) LogEvent {
	return &eventAdapter{event: e.event.Err(err), filter: e.filter}
}

// Str adds a string field to the log event
func (e *eventAdapter) Str(key, value string) LogEvent {
	if e.filter != nil {
		value = e.filter.FilterString(key, value)
	}
	return &eventAdapter{event: e.event.Str(key, value), filter: e.filter}
}

// Int adds an integer field to the log event
func (e *eventAdapter) Int(key string, value int) LogEvent {
	return &eventAdapter{event: e.event.Int(key, value), filter: e.filter}
}

// Int64 adds an int64 field to the log event
func (e *eventAdapter) Int64(key string, value int64) LogEvent {
	return &eventAdapter{event: e.event.Int64(key, value), filter: e.filter}
}

// Dur adds a duration field to the log event
func (e *eventAdapter) Dur(key string, d time.Duration) LogEvent {
	return &eventAdapter{event: e.event.Dur(key, d), filter: e.filter}
}

// Interface adds an arbitrary field to the log event
func (e *eventAdapter) Interface(key string, i any) LogEvent {
	if e.filter != nil {
		i = e.filter.FilterValue(key, i)
	}
	return &eventAdapter{event: e.event.Interface(key, i), filter: e.filter}
}
