// Package store provides persistence implementations for todo items.
// The TodoStore interface is defined in the parent todo package
// (../store_interface.go) so the service and server packages depend
// only on the contract.
//
// This package contains concrete implementations:
//   - MemoryStore: ordered in-process list behind a single mutex
//   - SQLStore: database/sql backend for SQLite and MySQL
//   - DynamoDBStore: AWS DynamoDB backend
//
// Schema definitions for both the relational and DynamoDB layouts live in schema.go.
package store
