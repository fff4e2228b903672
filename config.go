package todo

import (
	"fmt"
	"strings"
	"time"
)

// Backend selects the TodoStore implementation used by the server
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendMySQL    Backend = "mysql"
	BackendDynamoDB Backend = "dynamodb"
)

// IsRelational returns true if the backend is served by database/sql
func (b Backend) IsRelational() bool {
	return b == BackendSQLite || b == BackendMySQL
}

// String returns the string representation
func (b Backend) String() string {
	return string(b)
}

// ParseBackend converts a configuration value into a Backend
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendMemory, BackendSQLite, BackendMySQL, BackendDynamoDB:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want memory, sqlite, mysql or dynamodb)", s)
	}
}

// DefaultTableName is the relational table and DynamoDB table used when none is configured
const DefaultTableName = "todo_items"

// PoolConfig holds database/sql connection pool limits
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig provides pool defaults
var DefaultPoolConfig = PoolConfig{
	MaxOpenConns:    10,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
}
