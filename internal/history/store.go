// Package history persists fact-check reports and serves them back by id or
// as time-ordered summaries. It is the pipeline's cache: a report id is a
// content fingerprint, so a point lookup before verification answers "was
// this exact text checked already".
package history

import (
	"errors"

	"github.com/factseek/factseek/internal/model"
)

// ErrNotFound is the typed miss returned by lookups
var ErrNotFound = errors.New("report not found")

// Store is the report store contract. Put is idempotent per id: writing the
// same id again replaces the whole report, never part of it.
type Store interface {
	Put(report *model.Report) error
	Get(id string) (*model.Report, error)
	List() ([]model.ReportSummary, error)
	Close() error
}
