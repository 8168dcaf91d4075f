package pipeline

import (
	"errors"
	"fmt"
)

// ErrPartitionMissing means the ingestion source has no data for the
// processing date. This is fatal for the run.
var ErrPartitionMissing = errors.New("input partition missing for date")

// IngestionError wraps a structural failure at the loading boundary
type IngestionError struct {
	Source string // "orders" or "stock"
	Date   string
	Err    error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed for %s on %s: %v", e.Source, e.Date, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}
