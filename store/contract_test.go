package store

import (
	"context"
	"testing"
	"time"

	todo "github.com/sicko7947/todo-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(id, title string, quantity uint32, createdAt time.Time) *todo.TodoItem {
	return &todo.TodoItem{
		ID:        id,
		Title:     title,
		Quantity:  quantity,
		CreatedAt: todo.FormatTimestamp(createdAt),
	}
}

func itemIDs(items []*todo.TodoItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

// runStoreContract checks the behaviour every TodoStore must share.
// ordered is true for backends that list in insertion order.
func runStoreContract(t *testing.T, newStore func(t *testing.T) todo.TodoStore, ordered bool) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty list", func(t *testing.T) {
		s := newStore(t)
		items, err := s.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("create then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		item := newTestItem("item-1", "milk", 2, base)
		require.NoError(t, s.Create(ctx, item))

		got, err := s.Get(ctx, "item-1")
		require.NoError(t, err)
		assert.Equal(t, "milk", got.Title)
		assert.Equal(t, uint32(2), got.Quantity)
		assert.Equal(t, item.CreatedAt, got.CreatedAt)
		assert.Nil(t, got.UpdatedAt)
	})

	t.Run("get unknown id", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, todo.IsNotFound(err))
	})

	t.Run("update replaces fields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Create(ctx, newTestItem("item-1", "milk", 2, base)))

		stamp := todo.FormatTimestamp(base.Add(time.Minute))
		updated, err := s.Update(ctx, "item-1", todo.ItemInput{Title: "oat milk", Quantity: 5}, stamp)
		require.NoError(t, err)
		assert.Equal(t, "oat milk", updated.Title)
		assert.Equal(t, uint32(5), updated.Quantity)
		require.NotNil(t, updated.UpdatedAt)
		assert.Equal(t, stamp, *updated.UpdatedAt)
		assert.Equal(t, todo.FormatTimestamp(base), updated.CreatedAt)

		got, err := s.Get(ctx, "item-1")
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("update with unchanged values", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Create(ctx, newTestItem("item-1", "milk", 2, base)))

		stamp := todo.FormatTimestamp(base.Add(time.Minute))
		input := todo.ItemInput{Title: "milk", Quantity: 2}
		_, err := s.Update(ctx, "item-1", input, stamp)
		require.NoError(t, err)

		again, err := s.Update(ctx, "item-1", input, stamp)
		require.NoError(t, err)
		assert.Equal(t, stamp, *again.UpdatedAt)
	})

	t.Run("update unknown id does not create", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Update(ctx, "missing", todo.ItemInput{Title: "x", Quantity: 1}, todo.FormatTimestamp(base))
		require.Error(t, err)
		assert.True(t, todo.IsNotFound(err))

		items, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("delete twice", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Create(ctx, newTestItem("item-1", "milk", 2, base)))

		require.NoError(t, s.Delete(ctx, "item-1"))

		err := s.Delete(ctx, "item-1")
		require.Error(t, err)
		assert.True(t, todo.IsNotFound(err))

		_, err = s.Get(ctx, "item-1")
		assert.True(t, todo.IsNotFound(err))
	})

	t.Run("list after delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for i, id := range []string{"a", "b", "c"} {
			require.NoError(t, s.Create(ctx, newTestItem(id, "title-"+id, uint32(i), base.Add(time.Duration(i)*time.Second))))
		}
		require.NoError(t, s.Delete(ctx, "b"))

		items, err := s.List(ctx)
		require.NoError(t, err)
		if ordered {
			assert.Equal(t, []string{"a", "c"}, itemIDs(items))
		} else {
			assert.ElementsMatch(t, []string{"a", "c"}, itemIDs(items))
		}
	})

	t.Run("returned items are copies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Create(ctx, newTestItem("item-1", "milk", 2, base)))

		got, err := s.Get(ctx, "item-1")
		require.NoError(t, err)
		got.Title = "changed"

		again, err := s.Get(ctx, "item-1")
		require.NoError(t, err)
		assert.Equal(t, "milk", again.Title)
	})
}
