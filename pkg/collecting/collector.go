package collecting

import (
	"context"

	"SystemMonitor/pkg/metrics"
)

// Collector fills one facet of a snapshot and touches no other fields. On
// error the fields it did not set keep their zero value.
type Collector interface {
	Name() string
	Collect(ctx context.Context, s *metrics.Snapshot) error
	Close() error
}
