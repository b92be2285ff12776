// Package batch partitions scan records into fixed-size ordered batches, the
// unit of delivery and of retry.
package batch

import "github.com/parakeep/parascan/internal/record"

type Strategy string

const (
	StrategyStandard Strategy = "standard"
	StrategyCompact  Strategy = "compact"
	StrategyBulk     Strategy = "bulk"
)

// batchSizes maps each strategy to its batch size. Unknown strategies fall
// back to the standard size.
var batchSizes = map[Strategy]int{
	StrategyStandard: 100,
	StrategyCompact:  50,
	StrategyBulk:     500,
}

const fallbackSize = 100

// ParseStrategy normalizes a caller-supplied strategy name. Unrecognized
// names map to the standard strategy.
func ParseStrategy(raw string) Strategy {
	s := Strategy(raw)
	if _, ok := batchSizes[s]; ok {
		return s
	}

	return StrategyStandard
}

// Size returns the batch size for the strategy.
func (s Strategy) Size() int {
	if size, ok := batchSizes[s]; ok {
		return size
	}

	return fallbackSize
}

// Batch is an ordered, non-empty slice of records tagged with its 1-based
// sequence number and the total batch count of its task. Batches are built
// once and never mutated.
type Batch struct {
	Number  int
	Total   int
	Records []record.FileRecord
}

// Build splits records into batches of exactly size entries, except the final
// batch which holds the remainder. Caller order is preserved; nothing is
// filtered. Zero records produce zero batches. Non-positive sizes use the
// fallback size.
func Build(records []record.FileRecord, size int) []Batch {
	if size <= 0 {
		size = fallbackSize
	}
	if len(records) == 0 {
		return nil
	}

	total := (len(records) + size - 1) / size
	batches := make([]Batch, 0, total)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, Batch{
			Number:  len(batches) + 1,
			Total:   total,
			Records: records[start:end],
		})
	}

	return batches
}
