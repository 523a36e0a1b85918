package services

import (
	"context"

	"github.com/msdss/data-api/cmd/data-api/models"
)

// Check is one validation step of the guard pipeline. Checks are read-only
// against the Store; their only effect is the typed error they return.
type Check func(ctx context.Context, dataset string) error

// Guard gates dataset operations behind an ordered pipeline of checks.
// Restriction checks always run before existence checks so that restricted
// names leak no existence information beyond a uniform forbidden response.
//
// Exactly one of restricted/permitted is meant to be non-empty: restricted is
// a deny-list, permitted flips the guard into allow-list mode (used by the
// metadata ledger, whose manager may touch nothing but the ledger table).
type Guard struct {
	store      Store
	restricted []string
	permitted  []string
}

// NewGuard copies both table sets so later mutation of the caller's slices
// cannot leak into the guard.
func NewGuard(store Store, restricted []string, permitted []string) *Guard {
	g := &Guard{store: store}
	g.restricted = append(g.restricted, restricted...)
	g.permitted = append(g.permitted, permitted...)
	return g
}

func (g *Guard) run(ctx context.Context, dataset string, checks ...Check) error {
	for _, check := range checks {
		if err := check(ctx, dataset); err != nil {
			return err
		}
	}
	return nil
}

// Restrictions fails with forbidden if the dataset is in the restricted set,
// or, in allow-list mode, if it is not in the permitted set.
func (g *Guard) Restrictions(ctx context.Context, dataset string) error {
	if len(g.permitted) > 0 {
		for _, name := range g.permitted {
			if name == dataset {
				return nil
			}
		}
		return models.NewForbidden(dataset)
	}
	for _, name := range g.restricted {
		if name == dataset {
			return models.NewForbidden(dataset)
		}
	}
	return nil
}

// Exists fails with not found if the Store reports the dataset absent.
func (g *Guard) Exists(ctx context.Context, dataset string) error {
	ok, err := g.store.HasTable(ctx, dataset)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFound(dataset)
	}
	return nil
}

// Absent is the create-path polarity of Exists.
func (g *Guard) Absent(ctx context.Context, dataset string) error {
	ok, err := g.store.HasTable(ctx, dataset)
	if err != nil {
		return err
	}
	if ok {
		return models.NewAlreadyExists(dataset)
	}
	return nil
}

// KnownColumns fails with unknown column if any key of values is not a column
// of the dataset schema.
func (g *Guard) KnownColumns(values models.Row) Check {
	return func(ctx context.Context, dataset string) error {
		columns, err := g.store.Columns(ctx, dataset)
		if err != nil {
			return err
		}
		known := make(map[string]struct{}, len(columns))
		for _, column := range columns {
			known[column] = struct{}{}
		}
		for column := range values {
			if _, ok := known[column]; !ok {
				return models.NewUnknownColumn(column, dataset)
			}
		}
		return nil
	}
}
