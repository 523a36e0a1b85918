package services

import (
	"context"
	"strconv"
	"time"

	"github.com/msdss/data-api/cmd/data-api/models"
)

// DefaultMetadataTable is the reserved dataset holding one descriptor row per
// managed dataset.
const DefaultMetadataTable = "data"

// DefaultUserTable is reserved for the identity subsystem and therefore
// restricted alongside the ledger.
const DefaultUserTable = "user"

// MetadataService maintains the metadata ledger. It owns a DataService whose
// guard runs in allow-list mode with only the ledger table permitted, so
// ordinary dataset routes can never touch the ledger and the ledger manager
// can touch nothing else.
type MetadataService struct {
	data  *DataService
	table string
}

func NewMetadataService(store Store, table string) *MetadataService {
	if table == "" {
		table = DefaultMetadataTable
	}
	return &MetadataService{
		data:  NewDataService(store, nil, []string{table}),
		table: table,
	}
}

// Table returns the ledger table name.
func (s *MetadataService) Table() string {
	return s.table
}

// EnsureTable creates the ledger table if it does not exist yet. Called once
// at wiring time.
func (s *MetadataService) EnsureTable(ctx context.Context) error {
	return s.data.store.EnsureTable(ctx, s.table, models.MetadataColumns())
}

// datasetFilter builds the equality filter selecting one descriptor row. The
// name is quoted so dataset names survive the shell-style tokenizer.
func datasetFilter(dataset string) []string {
	return []string{"dataset = " + strconv.Quote(dataset)}
}

// Create inserts the descriptor row for a dataset. The dataset key of the
// record is forced to the target name regardless of what the caller supplied.
func (s *MetadataService) Create(ctx context.Context, dataset string, record models.MetadataRecord) error {
	record.Dataset = dataset
	return s.data.Insert(ctx, s.table, []models.Row{record.Row()})
}

// Get fetches the descriptor row for a dataset, or nil if there is none.
func (s *MetadataService) Get(ctx context.Context, dataset string) (models.Row, error) {
	rows, err := s.data.Get(ctx, s.table, models.QueryOptions{Where: datasetFilter(dataset)})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Update applies descriptor fields to the dataset's ledger row.
func (s *MetadataService) Update(ctx context.Context, dataset string, fields models.Row) error {
	return s.data.Update(ctx, s.table, fields, datasetFilter(dataset), "AND", false)
}

// TouchUpdatedAt refreshes only the updated_at field, invoked by every
// mutating dataset operation. A zero timestamp means now.
func (s *MetadataService) TouchUpdatedAt(ctx context.Context, dataset string, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	return s.Update(ctx, dataset, models.Row{"updated_at": at})
}

// Delete removes the descriptor row. Only invoked on full dataset deletion,
// never on partial deletes.
func (s *MetadataService) Delete(ctx context.Context, dataset string) error {
	return s.data.Delete(ctx, s.table, datasetFilter(dataset), "AND", false)
}

// Search runs the full query grammar against the ledger table. This is how
// dataset discovery is implemented: metadata is queried instead of scanning
// the store's table catalog.
func (s *MetadataService) Search(ctx context.Context, options models.QueryOptions) ([]models.Row, error) {
	return s.data.Get(ctx, s.table, options)
}
