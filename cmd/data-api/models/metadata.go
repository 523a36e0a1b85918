package models

import "time"

// MetadataRecord is the descriptor row kept in the metadata ledger for every
// managed dataset.
type MetadataRecord struct {
	Dataset     string    `json:"dataset"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        string    `json:"tags"`
	Source      string    `json:"source"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Row converts the record to the column-keyed shape the Store inserts.
func (r *MetadataRecord) Row() Row {
	return Row{
		"dataset":     r.Dataset,
		"title":       r.Title,
		"description": r.Description,
		"tags":        r.Tags,
		"source":      r.Source,
		"created_by":  r.CreatedBy,
		"created_at":  r.CreatedAt,
		"updated_at":  r.UpdatedAt,
	}
}

// MetadataColumns is the ledger table schema, created at startup if the table
// does not exist yet. The unique constraint on dataset converts a create race
// into a clean failure instead of a duplicate descriptor.
func MetadataColumns() []ColumnDefinition {
	return []ColumnDefinition{
		{Name: "id", Type: "BIGSERIAL", PrimaryKey: true},
		{Name: "dataset", Type: "TEXT", Unique: true},
		{Name: "title", Type: "TEXT"},
		{Name: "description", Type: "TEXT"},
		{Name: "tags", Type: "TEXT"},
		{Name: "source", Type: "TEXT"},
		{Name: "created_by", Type: "TEXT"},
		{Name: "created_at", Type: "TIMESTAMPTZ"},
		{Name: "updated_at", Type: "TIMESTAMPTZ"},
	}
}
