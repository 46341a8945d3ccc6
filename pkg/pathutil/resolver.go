// Package pathutil provides centralized path management for the brokerage data directory.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathResolver manages paths for the ledger databases and the Beancount journal.
type PathResolver struct {
	root       string
	dbPath     string
	boltPath   string
	journalDir string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// Root is the brokerage data directory (e.g., ~/brokerage)
	Root string
	// DatabasePath is the path to the SQLite ledger
	DatabasePath string
	// JournalDir is the directory for Beancount commission journals
	JournalDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {Root}/.ledger/brokerage.db
// If JournalDir is empty, it defaults to {Root}/journal
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.Root, ".ledger", "brokerage.db")
	}

	journalDir := config.JournalDir
	if journalDir == "" {
		journalDir = filepath.Join(config.Root, "journal")
	}

	return &PathResolver{
		root:       config.Root,
		dbPath:     dbPath,
		boltPath:   filepath.Join(config.Root, ".ledger", "brokerage.bolt"),
		journalDir: journalDir,
	}
}

// Root returns the data directory.
func (p *PathResolver) Root() string {
	return p.root
}

// DatabasePath returns the SQLite ledger path.
func (p *PathResolver) DatabasePath() string {
	return p.dbPath
}

// BoltPath returns the bbolt ledger path.
func (p *PathResolver) BoltPath() string {
	return p.boltPath
}

// JournalDir returns the Beancount journal directory.
func (p *PathResolver) JournalDir() string {
	return p.journalDir
}

// YearDir returns the journal directory for a year.
// Example: ~/brokerage/journal/2024
func (p *PathResolver) YearDir(year string) string {
	return filepath.Join(p.journalDir, year)
}

// MonthFilePath returns the journal file for a month.
// yearMonth should be in YYYY-MM format.
// Example: ~/brokerage/journal/2024/2024-01.beancount
func (p *PathResolver) MonthFilePath(yearMonth string) (string, error) {
	parts := strings.Split(yearMonth, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}

	return filepath.Join(p.YearDir(parts[0]), yearMonth+".beancount"), nil
}

// MainFilePath returns the top-level journal file that includes the month files.
func (p *PathResolver) MainFilePath() string {
	return filepath.Join(p.journalDir, "main.beancount")
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
