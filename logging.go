package todo

import (
	"time"

	"github.com/rs/zerolog"
)

// Log event names
const (
	// Item events
	EventItemCreated  = "item_created"
	EventItemUpdated  = "item_updated"
	EventItemDeleted  = "item_deleted"
	EventItemNotFound = "item_not_found"

	// Storage events
	EventStorageError = "storage_error"
	EventStoreOpened  = "store_opened"

	// HTTP events
	EventRequestCompleted = "request_completed"
)

// LogItemCreated logs a newly stored item
func LogItemCreated(logger zerolog.Logger, item *TodoItem) {
	logger.Info().
		Str("event", EventItemCreated).
		Str("item_id", item.ID).
		Str("title", item.Title).
		Uint32("quantity", item.Quantity).
		Msg("Item created")
}

// LogItemUpdated logs a successful update
func LogItemUpdated(logger zerolog.Logger, item *TodoItem) {
	e := logger.Info().
		Str("event", EventItemUpdated).
		Str("item_id", item.ID).
		Uint32("quantity", item.Quantity)
	if item.IsUpdated() {
		e = e.Str("updated_at", *item.UpdatedAt)
	}
	e.Msg("Item updated")
}

// LogItemDeleted logs a removed item
func LogItemDeleted(logger zerolog.Logger, itemID string) {
	logger.Info().
		Str("event", EventItemDeleted).
		Str("item_id", itemID).
		Msg("Item deleted")
}

// LogItemNotFound logs a lookup for an id that has no item
func LogItemNotFound(logger zerolog.Logger, itemID, operation string) {
	logger.Debug().
		Str("event", EventItemNotFound).
		Str("item_id", itemID).
		Str("operation", operation).
		Msg("Item not found")
}

// LogStorageError logs errors during persistence operations
func LogStorageError(logger zerolog.Logger, itemID, operation string, err error) {
	logger.Error().
		Str("event", EventStorageError).
		Str("item_id", itemID).
		Str("operation", operation).
		Err(err).
		Msg("Storage error")
}

// LogStoreOpened logs the backend chosen at startup
func LogStoreOpened(logger zerolog.Logger, backend Backend, target string) {
	logger.Info().
		Str("event", EventStoreOpened).
		Str("backend", backend.String()).
		Str("target", target).
		Msg("Store opened")
}

// LogRequestCompleted logs one served HTTP request
func LogRequestCompleted(logger zerolog.Logger, method, path string, status int, duration time.Duration) {
	var e *zerolog.Event
	switch {
	case status >= 500:
		e = logger.Error()
	case status >= 400:
		e = logger.Warn()
	default:
		e = logger.Info()
	}
	e.Str("event", EventRequestCompleted).
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration", duration).
		Msg("Request completed")
}

// BackendLogger creates a logger enriched with storage context
func BackendLogger(baseLogger zerolog.Logger, backend Backend) zerolog.Logger {
	return baseLogger.With().
		Str("backend", backend.String()).
		Logger()
}
