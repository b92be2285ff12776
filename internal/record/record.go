// Package record defines the per-file metadata model produced by a scan and
// the PARA bucket classification applied to it.
package record

import (
	"encoding/json"
	"time"
)

type (
	FileType string
	Bucket   string
)

const (
	TypePDF         FileType = "pdf"
	TypeImage       FileType = "image"
	TypeSpreadsheet FileType = "spreadsheet"
	TypeCSV         FileType = "csv"
	TypeMarkdown    FileType = "markdown"
	TypeText        FileType = "text"
	TypeUnknown     FileType = ""
)

const (
	BucketProjects  Bucket = "Projects"
	BucketAreas     Bucket = "Areas"
	BucketResources Bucket = "Resources"
	BucketArchive   Bucket = "Archive"
)

// FileRecord describes one filesystem entry collected during a scan.
// Keywords, Caption and Confidence are filled in by extraction and the
// record is not mutated afterwards within the scan.
type FileRecord struct {
	RelativePath  string    `json:"relativePath"`
	AbsolutePath  string    `json:"absolutePath"`
	IsDirectory   bool      `json:"isDirectory"`
	SizeBytes     int64     `json:"sizeBytes"`
	ModifiedAt    time.Time `json:"modifiedAt"`
	IsDevelopment bool      `json:"isDevelopment"`
	FileType      FileType  `json:"fileType,omitempty"`
	Keywords      []string  `json:"keywords,omitempty"`
	Caption       string    `json:"caption,omitempty"`
	Confidence    float64   `json:"confidence"`
	Bucket        Bucket    `json:"paraBucket,omitempty"`
}

// Classify maps a record's development flag and extracted keywords to a PARA
// bucket. It is pure: identical inputs always yield the same bucket. Areas is
// reserved for downstream reclassification and is never returned here.
func Classify(isDevelopment bool, keywords []string) Bucket {
	if isDevelopment {
		return BucketProjects
	}
	if len(keywords) > 0 {
		return BucketResources
	}
	return BucketArchive
}

func (r *FileRecord) ToJSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func FromJSON(data string) (*FileRecord, error) {
	var rec FileRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}
