package store

import (
	"context"
	"fmt"
	"sync"

	todo "github.com/sicko7947/todo-go"
)

// MemoryStore implements todo.TodoStore with an ordered in-process list.
// A plain mutex guards the list for the whole of every operation.
type MemoryStore struct {
	items []*todo.TodoItem
	mu    sync.Mutex
}

// NewMemoryStore creates a new in-memory todo store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make([]*todo.TodoItem, 0),
	}
}

// indexOf must be called with mu held
func (s *MemoryStore) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) List(ctx context.Context) ([]*todo.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*todo.TodoItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item.Clone())
	}

	return items, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*todo.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, todo.NewNotFoundError(id)
	}

	return s.items[i].Clone(), nil
}

func (s *MemoryStore) Create(ctx context.Context, item *todo.TodoItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(item.ID) >= 0 {
		return fmt.Errorf("todo item %s already exists", item.ID)
	}

	s.items = append(s.items, item.Clone())

	return nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, input todo.ItemInput, updatedAt string) (*todo.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, todo.NewNotFoundError(id)
	}

	item := s.items[i]
	item.Title = input.Title
	item.Quantity = input.Quantity
	item.UpdatedAt = todo.ToPtr(updatedAt)

	return item.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return todo.NewNotFoundError(id)
	}

	s.items = append(s.items[:i], s.items[i+1:]...)

	return nil
}

// Len returns the number of stored items
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

var _ todo.TodoStore = (*MemoryStore)(nil)
