package database

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/msdss/data-api/cmd/data-api/models"
	"github.com/msdss/data-api/pkg/filter"
)

// sqlOperators maps the filter grammar's comparison operators onto SQL. The
// substring operators (CONTAINS, STARTSWITH, ENDSWITH) are compiled
// separately into LIKE patterns.
var sqlOperators = map[string]string{
	"=":        "=",
	"!=":       "!=",
	">":        ">",
	">=":       ">=",
	"<":        "<",
	"<=":       "<=",
	"LIKE":     "LIKE",
	"ILIKE":    "ILIKE",
	"NOTLIKE":  "NOT LIKE",
	"NOTILIKE": "NOT ILIKE",
}

var aggregateFunctions = map[string]bool{
	"avg":      true,
	"count":    true,
	"max":      true,
	"min":      true,
	"stddev":   true,
	"sum":      true,
	"variance": true,
}

func supportedAggregates() []string {
	out := make([]string, 0, len(aggregateFunctions))
	for function := range aggregateFunctions {
		out = append(out, function)
	}
	sort.Strings(out)
	return out
}

func (c *Connection) Insert(ctx context.Context, table string, rows []models.Row) error {
	if len(rows) == 0 {
		return nil
	}

	columns := sortedColumns(rows[0])
	quoted := make([]string, 0, len(columns))
	for _, column := range columns {
		quoted = append(quoted, pgx.Identifier{column}.Sanitize())
	}

	args := make([]any, 0, len(rows)*len(columns))
	tuples := make([]string, 0, len(rows))
	for _, row := range rows {
		placeholders := make([]string, 0, len(columns))
		for _, column := range columns {
			args = append(args, row[column])
			placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
		}
		tuples = append(tuples, "("+strings.Join(placeholders, ", ")+")")
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES %s`,
		pgx.Identifier{table}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(tuples, ", "))
	_, err := c.db.Exec(ctx, query, args...)
	return translateError(err, table)
}

// Select compiles and runs the query against a table. GROUP BY is only
// emitted together with aggregate expressions; a group-by list without
// aggregates has nothing to group and is ignored.
func (c *Connection) Select(ctx context.Context, table string, query models.Query) ([]models.Row, error) {
	projection, err := compileProjection(query)
	if err != nil {
		return nil, err
	}

	var args []any
	sql := "SELECT " + projection + " FROM " + pgx.Identifier{table}.Sanitize()
	if len(query.Where) > 0 {
		sql += " WHERE " + compileWhere(query.Where, query.WhereBoolean, &args)
	}
	if len(query.GroupBy) > 0 && len(query.Aggregate) > 0 {
		grouped := make([]string, 0, len(query.GroupBy))
		for _, column := range query.GroupBy {
			grouped = append(grouped, pgx.Identifier{column}.Sanitize())
		}
		sql += " GROUP BY " + strings.Join(grouped, ", ")
	}
	ordering, err := compileOrdering(query.OrderBy, query.OrderBySort)
	if err != nil {
		return nil, err
	}
	sql += ordering
	if query.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", query.Limit)
	}
	if query.Offset > 0 {
		sql += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translateError(err, table)
	}
	defer rows.Close()

	var out []models.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(models.Row, len(values))
		for i, description := range rows.FieldDescriptions() {
			row[description.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, table)
	}
	return out, nil
}

func (c *Connection) Update(ctx context.Context, table string, values models.Row, where []filter.Clause, boolean filter.Boolean) (int64, error) {
	columns := sortedColumns(values)
	var args []any
	assignments := make([]string, 0, len(columns))
	for _, column := range columns {
		args = append(args, values[column])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", pgx.Identifier{column}.Sanitize(), len(args)))
	}

	sql := fmt.Sprintf(`UPDATE %s SET %s`, pgx.Identifier{table}.Sanitize(), strings.Join(assignments, ", "))
	if len(where) > 0 {
		sql += " WHERE " + compileWhere(where, boolean, &args)
	}
	tag, err := c.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, translateError(err, table)
	}
	return tag.RowsAffected(), nil
}

func (c *Connection) Delete(ctx context.Context, table string, where []filter.Clause, boolean filter.Boolean) (int64, error) {
	var args []any
	sql := `DELETE FROM ` + pgx.Identifier{table}.Sanitize()
	if len(where) > 0 {
		sql += " WHERE " + compileWhere(where, boolean, &args)
	}
	tag, err := c.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, translateError(err, table)
	}
	return tag.RowsAffected(), nil
}

// compileProjection builds the select list. With aggregates the projection
// becomes the group-by columns plus one aggregate expression per pairing;
// otherwise it is the requested columns or everything.
func compileProjection(query models.Query) (string, error) {
	if len(query.Aggregate) > 0 {
		parts := make([]string, 0, len(query.GroupBy)+len(query.Aggregate))
		for _, column := range query.GroupBy {
			parts = append(parts, pgx.Identifier{column}.Sanitize())
		}
		for i, column := range query.Aggregate {
			if i >= len(query.AggregateFunc) {
				return "", models.NewLengthMismatch("aggregate", "aggregate-func")
			}
			function := strings.ToLower(query.AggregateFunc[i])
			if !aggregateFunctions[function] {
				return "", models.NewUnsupportedAggregate(function, supportedAggregates())
			}
			quoted := pgx.Identifier{column}.Sanitize()
			parts = append(parts, fmt.Sprintf("%s(%s) AS %s", function, quoted, quoted))
		}
		return strings.Join(parts, ", "), nil
	}
	if len(query.Select) > 0 {
		parts := make([]string, 0, len(query.Select))
		for _, column := range query.Select {
			parts = append(parts, pgx.Identifier{column}.Sanitize())
		}
		return strings.Join(parts, ", "), nil
	}
	return "*", nil
}

// compileOrdering builds the ORDER BY clause. Directions pair positionally
// with columns and default to ascending when none were supplied.
func compileOrdering(orderBy []string, orderBySort []string) (string, error) {
	if len(orderBy) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(orderBy))
	for i, column := range orderBy {
		direction := "ASC"
		if i < len(orderBySort) {
			switch strings.ToLower(orderBySort[i]) {
			case "asc":
				direction = "ASC"
			case "desc":
				direction = "DESC"
			default:
				return "", models.NewInvalidSortOrder(orderBySort[i])
			}
		}
		parts = append(parts, pgx.Identifier{column}.Sanitize()+" "+direction)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// compileWhere turns parsed clauses into a SQL condition with positional
// parameters, appending the parameter values to args.
func compileWhere(where []filter.Clause, boolean filter.Boolean, args *[]any) string {
	conditions := make([]string, 0, len(where))
	for _, clause := range where {
		column := pgx.Identifier{clause.Column}.Sanitize()
		switch clause.Operator {
		case "CONTAINS":
			*args = append(*args, clause.Value)
			conditions = append(conditions, fmt.Sprintf("%s LIKE '%%' || $%d || '%%'", column, len(*args)))
		case "STARTSWITH":
			*args = append(*args, clause.Value)
			conditions = append(conditions, fmt.Sprintf("%s LIKE $%d || '%%'", column, len(*args)))
		case "ENDSWITH":
			*args = append(*args, clause.Value)
			conditions = append(conditions, fmt.Sprintf("%s LIKE '%%' || $%d", column, len(*args)))
		case "LIKE", "ILIKE", "NOTLIKE", "NOTILIKE":
			*args = append(*args, clause.Value)
			conditions = append(conditions, fmt.Sprintf("%s %s $%d", column, sqlOperators[clause.Operator], len(*args)))
		default:
			*args = append(*args, comparisonValue(clause))
			conditions = append(conditions, fmt.Sprintf("%s %s $%d", column, sqlOperators[clause.Operator], len(*args)))
		}
	}
	joiner := " AND "
	if boolean == filter.BooleanOr {
		joiner = " OR "
	}
	return strings.Join(conditions, joiner)
}

// comparisonValue types a filter value for comparison operators. Tokens come
// out of the tokenizer as strings; unquoted numbers and booleans are
// converted so numeric columns compare numerically instead of failing on a
// text parameter. A quoted value is an explicit string literal and binds
// as-is, which is what keeps digit-named datasets working against the text
// columns of the metadata ledger.
func comparisonValue(clause filter.Clause) any {
	if clause.Quoted {
		return clause.Value
	}
	return coerceValue(clause.Value)
}

func coerceValue(raw string) any {
	if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value
	}
	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		return value
	}
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	return raw
}
