package services

import (
	"context"
	"errors"

	"github.com/msdss/data-api/cmd/data-api/models"
	"github.com/msdss/data-api/pkg/filter"
)

// DataService manages datasets in the backing store. Every public operation
// runs the applicable guard checks first and only then touches the Store.
// One instance exists per configured route, each with its own guard.
type DataService struct {
	store Store
	guard *Guard
}

func NewDataService(store Store, restricted []string, permitted []string) *DataService {
	return &DataService{
		store: store,
		guard: NewGuard(store, restricted, permitted),
	}
}

// parseWhere turns raw "column operator value" strings into clauses, mapping
// filter failures to the API error taxonomy.
func parseWhere(where []string) ([]filter.Clause, error) {
	clauses, err := filter.Parse(where)
	if err != nil {
		var operatorErr *filter.UnsupportedOperatorError
		if errors.As(err, &operatorErr) {
			return nil, models.NewUnsupportedOperator(operatorErr.Operator)
		}
		return nil, models.NewMalformedFilter(err.Error())
	}
	return clauses, nil
}

// parseBoolean normalizes the where connective, rejecting anything other
// than AND and OR as a malformed filter.
func parseBoolean(raw string) (filter.Boolean, error) {
	boolean, err := filter.ParseBoolean(raw)
	if err != nil {
		return boolean, models.NewMalformedFilter(err.Error())
	}
	return boolean, nil
}

// CheckAccess runs only the restriction checks for a dataset name. Used by
// routes that read the metadata ledger instead of the dataset itself but
// still honor the route's table restrictions.
func (s *DataService) CheckAccess(ctx context.Context, dataset string) error {
	return s.guard.run(ctx, dataset, s.guard.Restrictions)
}

// Create creates a dataset from its initial rows. Fails with already exists
// if the store knows the name.
func (s *DataService) Create(ctx context.Context, dataset string, rows []models.Row) error {
	if err := s.guard.run(ctx, dataset, s.guard.Restrictions, s.guard.Absent); err != nil {
		return err
	}
	return s.store.CreateTable(ctx, dataset, rows)
}

// Insert appends rows to an existing dataset.
func (s *DataService) Insert(ctx context.Context, dataset string, rows []models.Row) error {
	if err := s.guard.run(ctx, dataset, s.guard.Restrictions, s.guard.Exists); err != nil {
		return err
	}
	return s.store.Insert(ctx, dataset, rows)
}

// Get queries rows from a dataset. Aggregate columns pair positionally with
// aggregate functions, order-by columns with sort directions; a length
// mismatch in either pairing is rejected rather than silently truncated.
func (s *DataService) Get(ctx context.Context, dataset string, options models.QueryOptions) ([]models.Row, error) {
	if err := s.guard.run(ctx, dataset, s.guard.Restrictions, s.guard.Exists); err != nil {
		return nil, err
	}
	query, err := buildQuery(options)
	if err != nil {
		return nil, err
	}
	return s.store.Select(ctx, dataset, query)
}

func buildQuery(options models.QueryOptions) (models.Query, error) {
	clauses, err := parseWhere(options.Where)
	if err != nil {
		return models.Query{}, err
	}
	if len(options.AggregateFunc) > 0 && len(options.AggregateFunc) != len(options.Aggregate) {
		return models.Query{}, models.NewLengthMismatch("aggregate", "aggregate-func")
	}
	if len(options.OrderBySort) > 0 && len(options.OrderBySort) != len(options.OrderBy) {
		return models.Query{}, models.NewLengthMismatch("order-by", "order-by-sort")
	}
	boolean, err := parseBoolean(options.WhereBoolean)
	if err != nil {
		return models.Query{}, err
	}
	return models.Query{
		Select:        options.Select,
		Where:         clauses,
		WhereBoolean:  boolean,
		GroupBy:       options.GroupBy,
		Aggregate:     options.Aggregate,
		AggregateFunc: options.AggregateFunc,
		OrderBy:       options.OrderBy,
		OrderBySort:   options.OrderBySort,
		Limit:         options.Limit,
		Offset:        options.Offset,
	}, nil
}

// Update applies values to all rows matching the filter. A filter is required
// unless updateAll is set, mirroring the delete semantics.
func (s *DataService) Update(ctx context.Context, dataset string, values models.Row, where []string, whereBoolean string, updateAll bool) error {
	if err := s.guard.run(ctx, dataset, s.guard.Restrictions, s.guard.Exists, s.guard.KnownColumns(values)); err != nil {
		return err
	}
	if len(where) == 0 && !updateAll {
		return models.NewMissingFilter()
	}
	clauses, err := parseWhere(where)
	if err != nil {
		return err
	}
	boolean, err := parseBoolean(whereBoolean)
	if err != nil {
		return err
	}
	_, err = s.store.Update(ctx, dataset, values, clauses, boolean)
	return err
}

// Delete removes rows matching the filter, or the entire dataset when
// deleteAll is set. Without a filter and without deleteAll it fails with
// missing filter.
func (s *DataService) Delete(ctx context.Context, dataset string, where []string, whereBoolean string, deleteAll bool) error {
	if err := s.guard.run(ctx, dataset, s.guard.Restrictions, s.guard.Exists); err != nil {
		return err
	}
	if deleteAll {
		return s.store.DropTable(ctx, dataset)
	}
	if len(where) == 0 {
		return models.NewMissingFilter()
	}
	clauses, err := parseWhere(where)
	if err != nil {
		return err
	}
	boolean, err := parseBoolean(whereBoolean)
	if err != nil {
		return err
	}
	_, err = s.store.Delete(ctx, dataset, clauses, boolean)
	return err
}

// GetColumns returns the number of columns of a dataset.
func (s *DataService) GetColumns(ctx context.Context, dataset string) (int, error) {
	if err := s.guard.run(ctx, dataset, s.guard.Restrictions, s.guard.Exists); err != nil {
		return 0, err
	}
	columns, err := s.store.Columns(ctx, dataset)
	if err != nil {
		return 0, err
	}
	return len(columns), nil
}

// GetRows returns the number of rows of a dataset.
func (s *DataService) GetRows(ctx context.Context, dataset string) (int64, error) {
	if err := s.guard.run(ctx, dataset, s.guard.Restrictions, s.guard.Exists); err != nil {
		return 0, err
	}
	return s.store.RowCount(ctx, dataset)
}
