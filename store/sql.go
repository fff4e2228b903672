package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	todo "github.com/sicko7947/todo-go"
	_ "modernc.org/sqlite"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore implements todo.TodoStore on a database/sql connection pool.
// Every statement takes its own connection from the pool and returns it
// before the method returns.
type SQLStore struct {
	db      *sql.DB
	backend todo.Backend
	table   string
}

// NewSQLStore wraps an open database. backend decides the DDL dialect.
func NewSQLStore(db *sql.DB, backend todo.Backend, table string) (*SQLStore, error) {
	if !backend.IsRelational() {
		return nil, fmt.Errorf("backend %s is not relational", backend)
	}
	if table == "" {
		table = todo.DefaultTableName
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	return &SQLStore{
		db:      db,
		backend: backend,
		table:   table,
	}, nil
}

// OpenSQLStore opens a pool for backend, verifies it and creates the table if absent
func OpenSQLStore(ctx context.Context, backend todo.Backend, dsn, table string, pool todo.PoolConfig) (*SQLStore, error) {
	driver, err := driverName(backend)
	if err != nil {
		return nil, err
	}
	switch backend {
	case todo.BackendSQLite:
		dsn = sqliteDSN(dsn)
	case todo.BackendMySQL:
		dsn = mysqlDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}

	s, err := NewSQLStore(db, backend, table)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func driverName(backend todo.Backend) (string, error) {
	switch backend {
	case todo.BackendSQLite:
		return "sqlite", nil
	case todo.BackendMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("backend %s is not relational", backend)
	}
}

// sqliteDSN makes writers wait for the file lock instead of failing.
// Transactions take the write lock at BEGIN so the busy timeout applies to them too.
func sqliteDSN(dsn string) string {
	if !strings.Contains(dsn, "busy_timeout") {
		dsn = withParam(dsn, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_txlock") {
		dsn = withParam(dsn, "_txlock=immediate")
	}
	return dsn
}

// mysqlDSN makes RowsAffected count matched rows, so an update that
// writes the values already stored is not mistaken for a missing id
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "clientFoundRows") {
		return dsn
	}
	return withParam(dsn, "clientFoundRows=true")
}

func withParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

// Migrate creates the todo table if it does not exist
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL(s.backend, s.table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Close releases the connection pool
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*todo.TodoItem, error) {
	var (
		item      todo.TodoItem
		quantity  int64
		updatedAt sql.NullString
	)
	if err := row.Scan(&item.ID, &item.Title, &quantity, &item.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}

	item.Quantity = uint32(quantity)
	if updatedAt.Valid {
		item.UpdatedAt = todo.ToPtr(updatedAt.String)
	}

	return &item, nil
}

func (s *SQLStore) List(ctx context.Context) ([]*todo.TodoItem, error) {
	rows, err := s.db.QueryContext(ctx, selectAllSQL(s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list todo items: %w", err)
	}
	defer rows.Close()

	items := make([]*todo.TodoItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list todo items: %w", err)
	}

	return items, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*todo.TodoItem, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, selectByIDSQL(s.table), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, todo.NewNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo item: %w", err)
	}

	return item, nil
}

func (s *SQLStore) Create(ctx context.Context, item *todo.TodoItem) error {
	_, err := s.db.ExecContext(ctx, insertSQL(s.table),
		item.ID,
		item.Title,
		int64(item.Quantity),
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create todo item: %w", err)
	}

	return nil
}

func (s *SQLStore) Update(ctx context.Context, id string, input todo.ItemInput, updatedAt string) (*todo.TodoItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	// A missing id matches no row, so nothing is written before not-found is reported
	result, err := tx.ExecContext(ctx, updateSQL(s.table), input.Title, int64(input.Quantity), updatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update todo item: %w", err)
	}
	if affected == 0 {
		return nil, todo.NewNotFoundError(id)
	}

	item, err := scanItem(tx.QueryRowContext(ctx, selectByIDSQL(s.table), id))
	if err != nil {
		return nil, fmt.Errorf("failed to read updated todo item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	return item, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, deleteSQL(s.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete todo item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete todo item: %w", err)
	}
	if affected == 0 {
		return todo.NewNotFoundError(id)
	}

	return nil
}

var _ todo.TodoStore = (*SQLStore)(nil)
