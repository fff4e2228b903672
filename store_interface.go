package todo

import "context"

// TodoStore defines the persistence interface for todo items.
//
// Implementations return copies, never their internal state. A missing item
// is reported with an error for which IsNotFound returns true; every other
// error is a storage failure.
type TodoStore interface {
	List(ctx context.Context) ([]*TodoItem, error)
	Get(ctx context.Context, id string) (*TodoItem, error)
	Create(ctx context.Context, item *TodoItem) error

	// Update replaces title and quantity, sets updated_at and returns the
	// stored result. A missing id is reported without writing anything.
	Update(ctx context.Context, id string, input ItemInput, updatedAt string) (*TodoItem, error)

	Delete(ctx context.Context, id string) error
}
