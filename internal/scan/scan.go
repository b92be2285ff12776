// Package scan resolves scan roots and walks directory trees into FileRecords.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parakeep/parascan/internal/record"
)

// ErrInvalidRoot wraps every path validation failure so callers can map it to
// a client error before any batch work starts.
type ErrInvalidRoot struct {
	Path   string
	Reason string
}

func (e *ErrInvalidRoot) Error() string {
	return fmt.Sprintf("invalid scan root %q: %s", e.Path, e.Reason)
}

// developmentMarkers flag a directory as a development project root. A
// directory containing any of them is recorded as a single development entry
// and not descended into.
var developmentMarkers = []string{
	".git",
	".hg",
	".svn",
	".idea",
	".vscode",
	".venv",
	"node_modules",
	"package.json",
	"pnpm-lock.yaml",
	"yarn.lock",
	"pyproject.toml",
	"requirements.txt",
	"setup.py",
	"Cargo.toml",
	"go.mod",
	"Gemfile",
}

var typeByExtension = map[string]record.FileType{
	".pdf":  record.TypePDF,
	".png":  record.TypeImage,
	".jpg":  record.TypeImage,
	".jpeg": record.TypeImage,
	".webp": record.TypeImage,
	".xlsx": record.TypeSpreadsheet,
	".xls":  record.TypeSpreadsheet,
	".xlsm": record.TypeSpreadsheet,
	".csv":  record.TypeCSV,
	".md":   record.TypeMarkdown,
	".txt":  record.TypeText,
}

// TypeForPath maps a file's extension (case-insensitive) to its type tag.
// Unmapped extensions yield TypeUnknown.
func TypeForPath(path string) record.FileType {
	return typeByExtension[strings.ToLower(filepath.Ext(path))]
}

// Resolve expands and validates a scan root. The path must exist and be a
// directory.
func Resolve(rawPath string) (string, error) {
	path := strings.TrimSpace(rawPath)
	if path == "" {
		return "", &ErrInvalidRoot{Path: rawPath, Reason: "path is empty"}
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", &ErrInvalidRoot{Path: rawPath, Reason: "cannot resolve home directory"}
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &ErrInvalidRoot{Path: rawPath, Reason: err.Error()}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", &ErrInvalidRoot{Path: rawPath, Reason: "path does not exist"}
	}
	if !info.IsDir() {
		return "", &ErrInvalidRoot{Path: rawPath, Reason: "path is not a directory"}
	}

	return abs, nil
}

// Walk traverses root depth-first and returns one FileRecord per entry.
// Dot-entries are skipped. Within each level, directories come before files
// and both are sorted case-insensitively. Development project roots are
// emitted as a single flagged entry without descending; other directories
// emit their children first, then the directory entry itself.
func Walk(root string) ([]record.FileRecord, error) {
	abs, err := Resolve(root)
	if err != nil {
		return nil, err
	}

	records := make([]record.FileRecord, 0, 64)
	if err := walkDir(abs, abs, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func walkDir(root, current string, out *[]record.FileRecord) error {
	entries, err := os.ReadDir(current)
	if err != nil {
		if current == root {
			return &ErrInvalidRoot{Path: root, Reason: "directory is not readable"}
		}
		// Mid-walk permission failures skip the subtree.
		return nil
	}

	var dirs, files []os.DirEntry
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
	}

	byName := func(list []os.DirEntry) func(i, j int) bool {
		return func(i, j int) bool {
			return strings.ToLower(list[i].Name()) < strings.ToLower(list[j].Name())
		}
	}
	sort.Slice(dirs, byName(dirs))
	sort.Slice(files, byName(files))

	for _, dir := range dirs {
		path := filepath.Join(current, dir.Name())
		if isDevelopmentRoot(path) {
			if rec, ok := buildRecord(root, path, dir, true); ok {
				*out = append(*out, rec)
			}
			continue
		}

		if err := walkDir(root, path, out); err != nil {
			return err
		}
		if rec, ok := buildRecord(root, path, dir, false); ok {
			*out = append(*out, rec)
		}
	}

	for _, file := range files {
		path := filepath.Join(current, file.Name())
		if rec, ok := buildRecord(root, path, file, false); ok {
			*out = append(*out, rec)
		}
	}

	return nil
}

func buildRecord(root, path string, entry os.DirEntry, isDevelopment bool) (record.FileRecord, bool) {
	info, err := entry.Info()
	if err != nil {
		// Entry vanished between ReadDir and stat; skip it.
		return record.FileRecord{}, false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return record.FileRecord{}, false
	}

	isDir := entry.IsDir()
	var size int64
	if !isDir {
		size = info.Size()
	}

	var fileType record.FileType
	if !isDir {
		fileType = TypeForPath(path)
	}

	return record.FileRecord{
		RelativePath:  filepath.ToSlash(rel),
		AbsolutePath:  path,
		IsDirectory:   isDir,
		SizeBytes:     size,
		ModifiedAt:    info.ModTime().UTC(),
		IsDevelopment: isDevelopment,
		FileType:      fileType,
	}, true
}

func isDevelopmentRoot(path string) bool {
	for _, marker := range developmentMarkers {
		if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
			return true
		}
	}

	return false
}
