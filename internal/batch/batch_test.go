package batch

import (
	"fmt"
	"testing"

	"github.com/parakeep/parascan/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []record.FileRecord {
	records := make([]record.FileRecord, n)
	for i := range records {
		records[i] = record.FileRecord{
			RelativePath: fmt.Sprintf("file-%04d.txt", i),
			AbsolutePath: fmt.Sprintf("/scan/file-%04d.txt", i),
		}
	}
	return records
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name          string
		fileCount     int
		size          int
		expectedCount int
		expectedSizes []int
	}{
		{
			name:          "exact multiple",
			fileCount:     200,
			size:          100,
			expectedCount: 2,
			expectedSizes: []int{100, 100},
		},
		{
			name:          "remainder in final batch",
			fileCount:     250,
			size:          100,
			expectedCount: 3,
			expectedSizes: []int{100, 100, 50},
		},
		{
			name:          "fewer records than one batch",
			fileCount:     7,
			size:          50,
			expectedCount: 1,
			expectedSizes: []int{7},
		},
		{
			name:          "single record",
			fileCount:     1,
			size:          100,
			expectedCount: 1,
			expectedSizes: []int{1},
		},
		{
			name:          "batch size one",
			fileCount:     3,
			size:          1,
			expectedCount: 3,
			expectedSizes: []int{1, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := makeRecords(tt.fileCount)

			batches := Build(records, tt.size)

			require.Len(t, batches, tt.expectedCount)

			total := 0
			for i, b := range batches {
				assert.Equal(t, i+1, b.Number, "sequence numbers are contiguous from 1")
				assert.Equal(t, tt.expectedCount, b.Total)
				assert.Len(t, b.Records, tt.expectedSizes[i])
				total += len(b.Records)
			}
			assert.Equal(t, tt.fileCount, total, "batch sizes sum to the record count")
		})
	}
}

func TestBuild_PreservesOrder(t *testing.T) {
	records := makeRecords(120)

	batches := Build(records, 50)

	i := 0
	for _, b := range batches {
		for _, rec := range b.Records {
			assert.Equal(t, records[i].RelativePath, rec.RelativePath)
			i++
		}
	}
}

func TestBuild_ZeroRecords(t *testing.T) {
	batches := Build(nil, 100)

	assert.Empty(t, batches)
}

func TestBuild_NonPositiveSizeUsesFallback(t *testing.T) {
	records := makeRecords(150)

	batches := Build(records, 0)

	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Records, fallbackSize)
	assert.Len(t, batches[1].Records, 50)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		raw      string
		expected Strategy
	}{
		{"standard", StrategyStandard},
		{"compact", StrategyCompact},
		{"bulk", StrategyBulk},
		{"", StrategyStandard},
		{"turbo", StrategyStandard},
	}

	for _, tt := range tests {
		t.Run("raw="+tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseStrategy(tt.raw))
		})
	}
}

func TestStrategySizes(t *testing.T) {
	assert.Equal(t, 100, StrategyStandard.Size())
	assert.Equal(t, 50, StrategyCompact.Size())
	assert.Equal(t, 500, StrategyBulk.Size())
	assert.Equal(t, fallbackSize, Strategy("unknown").Size())
}
