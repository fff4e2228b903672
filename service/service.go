package service

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	todo "github.com/sicko7947/todo-go"
)

// Service implements the todo operations on top of a TodoStore.
// It owns id generation and timestamps; the store only persists.
type Service struct {
	store  todo.TodoStore
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string

	mu        sync.Mutex
	lastStamp time.Time
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithLogger sets a custom logger for the service
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces time.Now as the source of timestamps
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator replaces the random UUID generator
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *Service) {
		s.newID = newID
	}
}

// NewService creates a new todo service with optional configuration
// If no logger is provided, a default stdout logger with Info level is used
func NewService(store todo.TodoStore, opts ...ServiceOption) *Service {
	// Default logger: pretty console output, Info level
	defaultLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)

	svc := &Service{
		store:  store,
		logger: defaultLogger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}

	// Apply options
	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// stamp returns the current time in TimestampLayout. Each stamp is strictly
// later than the one before it, even if the clock stalls or steps back.
func (s *Service) stamp() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = t

	return todo.FormatTimestamp(t)
}

// fail logs err and converts it to the error returned to callers
func (s *Service) fail(itemID, operation string, err error) error {
	if todo.IsNotFound(err) {
		todo.LogItemNotFound(s.logger, itemID, operation)
		return err
	}

	todo.LogStorageError(s.logger, itemID, operation, err)
	return todo.NewStorageError(operation, err)
}

// ListItems returns every stored item in the store's order
func (s *Service) ListItems(ctx context.Context) ([]*todo.TodoItem, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, s.fail("", "list items", err)
	}
	if items == nil {
		items = make([]*todo.TodoItem, 0)
	}

	return items, nil
}

// GetItem returns the item with the given id
func (s *Service) GetItem(ctx context.Context, id string) (*todo.TodoItem, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.fail(id, "get item", err)
	}

	return item, nil
}

// CreateItem stores a new item with a fresh id and creation time
func (s *Service) CreateItem(ctx context.Context, input todo.ItemInput) (*todo.TodoItem, error) {
	item := &todo.TodoItem{
		ID:        s.newID(),
		Title:     input.Title,
		Quantity:  input.Quantity,
		CreatedAt: s.stamp(),
	}

	if err := s.store.Create(ctx, item); err != nil {
		return nil, s.fail(item.ID, "add item", err)
	}

	todo.LogItemCreated(s.logger, item)

	return item, nil
}

// UpdateItem replaces title and quantity of an existing item
func (s *Service) UpdateItem(ctx context.Context, id string, input todo.ItemInput) (*todo.TodoItem, error) {
	item, err := s.store.Update(ctx, id, input, s.stamp())
	if err != nil {
		return nil, s.fail(id, "update item", err)
	}

	todo.LogItemUpdated(s.logger, item)

	return item, nil
}

// DeleteItem removes an item
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail(id, "delete item", err)
	}

	todo.LogItemDeleted(s.logger, id)

	return nil
}
