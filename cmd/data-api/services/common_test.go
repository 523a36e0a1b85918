package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/msdss/data-api/cmd/data-api/models"
	"github.com/msdss/data-api/pkg/filter"
)

// fakeStore is an in-memory Store used by the service tests. It implements
// enough of the query grammar (equality and ordering comparators, AND/OR) to
// exercise the managers; the SQL layer itself is covered by the database
// package tests against pgxmock.
type fakeStore struct {
	tables map[string][]models.Row
	// calls records the mutating operations in order, so tests can assert
	// that guard failures happen before any write.
	calls []string
	// failInsertOn makes Insert fail for one table, for the create
	// compensation tests.
	failInsertOn string
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: make(map[string][]models.Row)}
}

func (f *fakeStore) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeStore) HasTable(ctx context.Context, table string) (bool, error) {
	_, ok := f.tables[table]
	return ok, nil
}

func (f *fakeStore) Columns(ctx context.Context, table string) ([]string, error) {
	rows, ok := f.tables[table]
	if !ok || len(rows) == 0 {
		return nil, nil
	}
	columns := make([]string, 0, len(rows[0]))
	for column := range rows[0] {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns, nil
}

func (f *fakeStore) RowCount(ctx context.Context, table string) (int64, error) {
	return int64(len(f.tables[table])), nil
}

func (f *fakeStore) CreateTable(ctx context.Context, table string, rows []models.Row) error {
	f.record("create:%s", table)
	f.tables[table] = append([]models.Row{}, rows...)
	return nil
}

func (f *fakeStore) EnsureTable(ctx context.Context, table string, columns []models.ColumnDefinition) error {
	f.record("ensure:%s", table)
	if _, ok := f.tables[table]; !ok {
		f.tables[table] = []models.Row{}
	}
	return nil
}

func (f *fakeStore) DropTable(ctx context.Context, table string) error {
	f.record("drop:%s", table)
	delete(f.tables, table)
	return nil
}

func (f *fakeStore) Insert(ctx context.Context, table string, rows []models.Row) error {
	f.record("insert:%s", table)
	if table == f.failInsertOn {
		return fmt.Errorf("insert into %s failed", table)
	}
	f.tables[table] = append(f.tables[table], rows...)
	return nil
}

func (f *fakeStore) Select(ctx context.Context, table string, query models.Query) ([]models.Row, error) {
	var out []models.Row
	for _, row := range f.tables[table] {
		if matches(row, query.Where, query.WhereBoolean) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, table string, values models.Row, where []filter.Clause, boolean filter.Boolean) (int64, error) {
	f.record("update:%s", table)
	var n int64
	for _, row := range f.tables[table] {
		if matches(row, where, boolean) {
			for column, value := range values {
				row[column] = value
			}
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Delete(ctx context.Context, table string, where []filter.Clause, boolean filter.Boolean) (int64, error) {
	f.record("delete:%s", table)
	kept := f.tables[table][:0]
	var n int64
	for _, row := range f.tables[table] {
		if matches(row, where, boolean) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	f.tables[table] = kept
	return n, nil
}

func matches(row models.Row, where []filter.Clause, boolean filter.Boolean) bool {
	if len(where) == 0 {
		return true
	}
	anyMatch := false
	allMatch := true
	for _, clause := range where {
		ok := matchClause(row, clause)
		anyMatch = anyMatch || ok
		allMatch = allMatch && ok
	}
	if boolean == filter.BooleanOr {
		return anyMatch
	}
	return allMatch
}

func matchClause(row models.Row, clause filter.Clause) bool {
	value, ok := row[clause.Column]
	if !ok {
		return false
	}
	switch clause.Operator {
	case "=":
		return fmt.Sprintf("%v", value) == clause.Value
	case "!=":
		return fmt.Sprintf("%v", value) != clause.Value
	case ">", ">=", "<", "<=":
		left, err1 := toFloat(value)
		right, err2 := strconv.ParseFloat(clause.Value, 64)
		if err1 != nil || err2 != nil {
			return false
		}
		switch clause.Operator {
		case ">":
			return left > right
		case ">=":
			return left >= right
		case "<":
			return left < right
		default:
			return left <= right
		}
	}
	return false
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return strconv.ParseFloat(fmt.Sprintf("%v", v), 64)
	}
}
