package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/msdss/data-api/cmd/data-api/models"
)

// translateError converts the Postgres failure shapes a request can trigger
// into the APIError taxonomy. Anything else (connection loss, syntax bugs in
// the builders) propagates untouched and surfaces as an internal error.
func translateError(err error, table string) error {
	if err == nil {
		return nil
	}
	code, message := sqlState(err)
	switch code {
	case "42P01": // undefined table
		return models.NewNotFound(table)
	case "42703": // undefined column
		return models.NewUnknownColumn(quotedToken(message), table)
	case "23505", "42P07": // unique violation, duplicate table
		return models.NewAlreadyExists(table)
	}
	return err
}

// sqlState extracts the SQLSTATE code and message from a driver error.
func sqlState(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message
	}
	return "", ""
}

// quotedToken pulls the first double-quoted token out of a Postgres error
// message, e.g. the column name from `column "x" does not exist`.
func quotedToken(message string) string {
	start := strings.Index(message, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(message[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return message[start+1 : start+1+end]
}
