package store

import (
	"fmt"

	todo "github.com/sicko7947/todo-go"
)

// DynamoDB schema constants for single-table design
const (
	// Table attributes
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrGSI1PK     = "GSI1PK"
	AttrGSI1SK     = "GSI1SK"
	AttrEntityType = "entity_type"

	// Entity types
	EntityTypeTodoItem = "TodoItem"

	// Index names
	IndexListIndex = "GSI1"
)

// TodoItem keys: PK=ITEM#{id}, SK=META
func todoItemPK(id string) string {
	return fmt.Sprintf("ITEM#%s", id)
}

func todoItemSK() string {
	return "META"
}

// All items share one GSI1 partition, sorted by creation time
func todoItemGSI1PK() string {
	return "TODO"
}

func todoItemGSI1SK(createdAt, id string) string {
	return fmt.Sprintf("%s#%s", createdAt, id)
}

// Relational schema

// createTableSQL returns the CREATE TABLE statement for a SQL backend.
// MySQL cannot put a primary key on an unbounded TEXT column.
func createTableSQL(backend todo.Backend, table string) string {
	if backend == todo.BackendMySQL {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id VARCHAR(64) PRIMARY KEY,
    title TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    created_at VARCHAR(64) NOT NULL,
    updated_at VARCHAR(64)
)`, table)
	}

	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT
)`, table)
}

func selectAllSQL(table string) string {
	return fmt.Sprintf("SELECT id, title, quantity, created_at, updated_at FROM %s", table)
}

func selectByIDSQL(table string) string {
	return fmt.Sprintf("SELECT id, title, quantity, created_at, updated_at FROM %s WHERE id = ?", table)
}

func insertSQL(table string) string {
	return fmt.Sprintf("INSERT INTO %s (id, title, quantity, created_at) VALUES (?, ?, ?, ?)", table)
}

func updateSQL(table string) string {
	return fmt.Sprintf("UPDATE %s SET title = ?, quantity = ?, updated_at = ? WHERE id = ?", table)
}

func deleteSQL(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)
}
