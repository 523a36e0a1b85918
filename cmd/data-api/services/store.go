package services

import (
	"context"

	"github.com/msdss/data-api/cmd/data-api/models"
	"github.com/msdss/data-api/pkg/filter"
)

// Store is the persistence collaborator behind the data and metadata
// managers. The database package provides the Postgres implementation; tests
// substitute an in-memory fake.
//
// Implementations translate known Postgres failure shapes (undefined column,
// undefined table, unique violations) into the models.APIError taxonomy and
// let everything else propagate untouched.
type Store interface {
	HasTable(ctx context.Context, table string) (bool, error)
	Columns(ctx context.Context, table string) ([]string, error)
	RowCount(ctx context.Context, table string) (int64, error)

	// CreateTable creates the table with a schema inferred from the first
	// row and inserts all rows.
	CreateTable(ctx context.Context, table string, rows []models.Row) error
	// EnsureTable creates a table with an explicit schema if it is absent.
	EnsureTable(ctx context.Context, table string, columns []models.ColumnDefinition) error
	DropTable(ctx context.Context, table string) error

	Insert(ctx context.Context, table string, rows []models.Row) error
	Select(ctx context.Context, table string, query models.Query) ([]models.Row, error)
	Update(ctx context.Context, table string, values models.Row, where []filter.Clause, boolean filter.Boolean) (int64, error)
	Delete(ctx context.Context, table string, where []filter.Clause, boolean filter.Boolean) (int64, error)
}
