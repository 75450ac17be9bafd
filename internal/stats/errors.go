package stats

import "fmt"

// ValueLimitError indicates a computed metric exceeded a configured
// ceiling; the whole activity creation fails, never a partial save.
type ValueLimitError struct {
	Metric string
	Value  float64
	Limit  float64
}

func (e *ValueLimitError) Error() string {
	return fmt.Sprintf("%s value %.2f exceeds configured limit %.2f", e.Metric, e.Value, e.Limit)
}
