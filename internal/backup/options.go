package backup

import "time"

// Format selects the export file format.
type Format string

const (
	// FormatJSON is the round-trippable export: a JSON array of entries.
	FormatJSON Format = "json"

	// FormatMarkdown is a read-only export for humans.
	FormatMarkdown Format = "markdown"
)

// Valid returns true if the format is recognized.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatMarkdown:
		return true
	default:
		return false
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return ".json"
}

// ExportOptions configures an export.
type ExportOptions struct {
	Format     Format
	OutputPath string // Where to write the file; generated in the backup dir if empty
}

// ImportOptions configures an import.
type ImportOptions struct {
	SkipExisting bool // Skip entries whose title, date and content already exist
	DryRun       bool // Parse and count without writing
}

// ExportResult describes a written export.
type ExportResult struct {
	Path     string        `json:"path"`
	Format   Format        `json:"format"`
	Entries  int           `json:"entries"`
	Size     int64         `json:"size"`
	Duration time.Duration `json:"duration"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	Total    int           `json:"total"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// BackupInfo describes a backup file on disk.
type BackupInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
