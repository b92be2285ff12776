package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		isDevelopment bool
		keywords      []string
		expected      Bucket
	}{
		{
			name:          "development entry goes to Projects",
			isDevelopment: true,
			keywords:      nil,
			expected:      BucketProjects,
		},
		{
			name:          "development wins over keywords",
			isDevelopment: true,
			keywords:      []string{"invoice", "2024"},
			expected:      BucketProjects,
		},
		{
			name:          "keywords go to Resources",
			isDevelopment: false,
			keywords:      []string{"quarterly report"},
			expected:      BucketResources,
		},
		{
			name:          "no signal goes to Archive",
			isDevelopment: false,
			keywords:      nil,
			expected:      BucketArchive,
		},
		{
			name:          "empty keyword slice goes to Archive",
			isDevelopment: false,
			keywords:      []string{},
			expected:      BucketArchive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.isDevelopment, tt.keywords)

			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	keywords := []string{"budget", "plan"}

	first := Classify(false, keywords)
	for range 10 {
		assert.Equal(t, first, Classify(false, keywords))
	}
}

func TestClassify_NeverReturnsAreas(t *testing.T) {
	inputs := []struct {
		dev      bool
		keywords []string
	}{
		{false, nil},
		{true, nil},
		{false, []string{"a"}},
		{true, []string{"a", "b", "c", "d", "e"}},
	}

	for _, in := range inputs {
		assert.NotEqual(t, BucketAreas, Classify(in.dev, in.keywords))
	}
}

func TestFileRecordJSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	rec := &FileRecord{
		RelativePath:  "docs/report.pdf",
		AbsolutePath:  "/home/user/docs/report.pdf",
		IsDirectory:   false,
		SizeBytes:     2048,
		ModifiedAt:    now,
		IsDevelopment: false,
		FileType:      TypePDF,
		Keywords:      []string{"annual report", "finance"},
		Caption:       "Annual Report 2025",
		Confidence:    0.85,
		Bucket:        BucketResources,
	}

	jsonStr, err := rec.ToJSON()
	assert.NoError(t, err)
	assert.Contains(t, jsonStr, "relativePath")
	assert.Contains(t, jsonStr, "sizeBytes")
	assert.Contains(t, jsonStr, "paraBucket")

	restored, err := FromJSON(jsonStr)
	assert.NoError(t, err)
	assert.Equal(t, rec.RelativePath, restored.RelativePath)
	assert.Equal(t, rec.FileType, restored.FileType)
	assert.Equal(t, rec.Keywords, restored.Keywords)
	assert.Equal(t, rec.Confidence, restored.Confidence)
	assert.Equal(t, rec.Bucket, restored.Bucket)
}

func TestFromJSON_InvalidJSON(t *testing.T) {
	_, err := FromJSON("not json")

	assert.Error(t, err)
}
