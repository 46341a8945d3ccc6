package beancount

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shunichi-ikebuchi/brokerage/pkg/pathutil"
)

// Repository stores commission entries in monthly Beancount files.
type Repository interface {
	// Append adds an entry to the month file, creating the file on first use.
	Append(yearMonth, entry, comment string) error

	// Month returns the content of a month file and whether it exists.
	Month(yearMonth string) (string, bool, error)

	// Months lists the months of a year that have a file, in order.
	Months(year string) ([]string, error)
}

// FileSystemRepository keeps one file per month under the journal directory
// and a main.beancount that includes every month file.
// Appends are serialized so concurrent writers never interleave entries.
type FileSystemRepository struct {
	mu           sync.Mutex
	pathResolver *pathutil.PathResolver
}

// NewFileSystemRepository creates a new FileSystemRepository.
func NewFileSystemRepository(pathResolver *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{
		pathResolver: pathResolver,
	}
}

// Append writes entry, preceded by a comment line when comment is set.
func (r *FileSystemRepository) Append(yearMonth, entry, comment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	filePath, err := r.pathResolver.MonthFilePath(yearMonth)
	if err != nil {
		return err
	}
	if err := r.ensureMonth(yearMonth, filePath); err != nil {
		return err
	}

	var b strings.Builder
	if comment != "" {
		fmt.Fprintf(&b, "; %s\n", comment)
	}
	b.WriteString(entry)
	if !strings.HasSuffix(entry, "\n") {
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	return appendFile(filePath, b.String())
}

// Month returns the content of a month file. A missing file is not an error.
func (r *FileSystemRepository) Month(yearMonth string) (string, bool, error) {
	filePath, err := r.pathResolver.MonthFilePath(yearMonth)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return string(data), true, nil
}

// Months lists the YYYY-MM keys with a file in the year directory.
func (r *FileSystemRepository) Months(year string) ([]string, error) {
	entries, err := os.ReadDir(r.pathResolver.YearDir(year))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read year directory: %w", err)
	}

	var months []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".beancount" {
			continue
		}
		month := strings.TrimSuffix(name, ".beancount")
		if strings.HasPrefix(month, year+"-") {
			months = append(months, month)
		}
	}

	sort.Strings(months)
	return months, nil
}

// ensureMonth creates a month file with its header and registers it in the
// main file. Existing files are left alone.
func (r *FileSystemRepository) ensureMonth(yearMonth, filePath string) error {
	if r.pathResolver.FileExists(filePath) {
		return nil
	}

	if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
		return err
	}
	header := fmt.Sprintf("; Brokerage commissions for %s\n\n", yearMonth)
	if err := os.WriteFile(filePath, []byte(header), 0644); err != nil {
		return fmt.Errorf("failed to create month file: %w", err)
	}

	return r.include(filePath)
}

// include adds an include directive for filePath to main.beancount.
func (r *FileSystemRepository) include(filePath string) error {
	mainPath := r.pathResolver.MainFilePath()
	rel, err := filepath.Rel(filepath.Dir(mainPath), filePath)
	if err != nil {
		return fmt.Errorf("failed to resolve include path: %w", err)
	}

	content := ""
	if !r.pathResolver.FileExists(mainPath) {
		content = "; Brokerage commission journal\noption \"title\" \"Brokerage commissions\"\n\n"
	}
	content += fmt.Sprintf("include %q\n", filepath.ToSlash(rel))

	return appendFile(mainPath, content)
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s for appending: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
