package models

import "github.com/msdss/data-api/pkg/filter"

// Query is the storage-level query shape handed to the Store after all guard
// and filter validation passed. Where clauses are already parsed; Limit and
// Offset values <= 0 mean "not set".
type Query struct {
	Select        []string
	Where         []filter.Clause
	WhereBoolean  filter.Boolean
	GroupBy       []string
	Aggregate     []string
	AggregateFunc []string
	OrderBy       []string
	OrderBySort   []string
	Limit         int
	Offset        int
}

// QueryOptions is the transport-level counterpart of Query: where clauses are
// still raw strings and get parsed by the data manager.
type QueryOptions struct {
	Select        []string
	Where         []string
	WhereBoolean  string
	GroupBy       []string
	Aggregate     []string
	AggregateFunc []string
	OrderBy       []string
	OrderBySort   []string
	Limit         int
	Offset        int
}

// Row is one dataset row keyed by column name.
type Row = map[string]any

// ColumnDefinition describes one column of an explicitly created table, used
// for the metadata ledger schema.
type ColumnDefinition struct {
	Name       string
	Type       string
	PrimaryKey bool
	Unique     bool
}
