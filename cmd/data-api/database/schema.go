package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/msdss/data-api/cmd/data-api/models"
)

// HasTable checks the catalog instead of probing with a query, so an absent
// table never shows up as a query error.
func (c *Connection) HasTable(ctx context.Context, table string) (bool, error) {
	var tableName string
	query := `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1`
	row := c.db.QueryRow(ctx, query, table)
	err := row.Scan(&tableName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Columns returns the table's column names in definition order. Results are
// cached; CreateTable, EnsureTable and DropTable invalidate the entry.
func (c *Connection) Columns(ctx context.Context, table string) ([]string, error) {
	if cached, ok := c.columnsCache.Get(table); ok {
		return cached.([]string), nil
	}
	query := `SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position`
	rows, err := c.db.Query(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, err
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		c.columnsCache.Add(table, columns)
	}
	return columns, nil
}

func (c *Connection) RowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pgx.Identifier{table}.Sanitize())
	row := c.db.QueryRow(ctx, query)
	if err := row.Scan(&count); err != nil {
		return 0, translateError(err, table)
	}
	return count, nil
}

// CreateTable creates the table with a schema inferred from the first row
// and inserts all rows. Columns are ordered by name so the generated DDL is
// deterministic.
func (c *Connection) CreateTable(ctx context.Context, table string, rows []models.Row) error {
	if len(rows) == 0 {
		return errors.New("cannot infer a schema from zero rows")
	}

	columns := sortedColumns(rows[0])
	definitions := make([]string, 0, len(columns))
	for _, column := range columns {
		definitions = append(definitions, pgx.Identifier{column}.Sanitize()+" "+inferColumnType(rows[0][column]))
	}

	query := fmt.Sprintf(
		`CREATE TABLE %s (%s)`,
		pgx.Identifier{table}.Sanitize(),
		strings.Join(definitions, ", "))
	if _, err := c.db.Exec(ctx, query); err != nil {
		return translateError(err, table)
	}
	c.columnsCache.Remove(table)
	return c.Insert(ctx, table, rows)
}

// EnsureTable creates a table with an explicit schema if it is absent, used
// for the metadata ledger at wiring time.
func (c *Connection) EnsureTable(ctx context.Context, table string, columns []models.ColumnDefinition) error {
	definitions := make([]string, 0, len(columns))
	for _, column := range columns {
		definition := pgx.Identifier{column.Name}.Sanitize() + " " + column.Type
		if column.PrimaryKey {
			definition += " PRIMARY KEY"
		}
		if column.Unique {
			definition += " UNIQUE"
		}
		definitions = append(definitions, definition)
	}

	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (%s)`,
		pgx.Identifier{table}.Sanitize(),
		strings.Join(definitions, ", "))
	if _, err := c.db.Exec(ctx, query); err != nil {
		return translateError(err, table)
	}
	c.columnsCache.Remove(table)
	return nil
}

func (c *Connection) DropTable(ctx context.Context, table string) error {
	query := fmt.Sprintf(`DROP TABLE %s`, pgx.Identifier{table}.Sanitize())
	if _, err := c.db.Exec(ctx, query); err != nil {
		return translateError(err, table)
	}
	c.columnsCache.Remove(table)
	return nil
}

// inferColumnType maps the decoded JSON value of the first row to a Postgres
// type. JSON numbers decode as float64, so numeric columns come out as
// DOUBLE PRECISION unless the caller handed typed Go values.
func inferColumnType(value any) string {
	switch value.(type) {
	case bool:
		return "BOOLEAN"
	case int, int32, int64:
		return "BIGINT"
	case float32, float64:
		return "DOUBLE PRECISION"
	case time.Time:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func sortedColumns(row models.Row) []string {
	columns := make([]string, 0, len(row))
	for column := range row {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
