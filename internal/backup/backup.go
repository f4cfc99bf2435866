package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/logger"
)

// FilePrefix starts the name of every generated backup file.
const FilePrefix = "my-diary-backup-"

// Entries is the entry source and sink a backup works against.
// *storage.Router satisfies it, so exports follow the active storage mode.
type Entries interface {
	GetAllEntries(ctx context.Context) ([]domain.Entry, error)
	AddEntry(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error)
}

// Service creates, lists and restores backups.
type Service struct {
	entries   Entries
	backupDir string
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service writing generated files into backupDir.
func NewService(entries Entries, backupDir string, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		entries:   entries,
		backupDir: backupDir,
		logger:    log,
		now:       time.Now,
	}
}

// FileName returns the generated file name for a backup taken at t.
func FileName(t time.Time, f Format) string {
	return FilePrefix + strconv.FormatInt(t.UnixMilli(), 10) + f.Extension()
}

// Export writes every entry of the active storage mode to a file.
func (s *Service) Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	start := s.now()
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if !opts.Format.Valid() {
		return nil, fmt.Errorf("unknown export format %q", opts.Format)
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
			return nil, fmt.Errorf("create backup dir: %w", err)
		}
		outputPath = filepath.Join(s.backupDir, FileName(start, opts.Format))
	}

	entries, err := s.entries.GetAllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}

	switch opts.Format {
	case FormatMarkdown:
		err = WriteMarkdown(f, entries)
	default:
		err = WriteJSON(f, entries)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(outputPath)
		return nil, fmt.Errorf("write backup: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		Path:     outputPath,
		Format:   opts.Format,
		Entries:  len(entries),
		Size:     info.Size(),
		Duration: s.now().Sub(start),
	}
	s.logger.Info("export complete",
		"path", result.Path,
		"format", result.Format,
		"entries", result.Entries,
		"size", result.Size)

	return result, nil
}

// WriteJSON writes entries as a JSON array indented by two spaces.
func WriteJSON(w io.Writer, entries []domain.Entry) error {
	if entries == nil {
		entries = []domain.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(entries)
}

// List returns the generated backups in the backup dir, newest first.
func (s *Service) List(ctx context.Context) ([]BackupInfo, error) {
	dirEntries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []BackupInfo
	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), FilePrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Name:      entry.Name(),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: takenAt(entry.Name(), info.ModTime()),
		})
	}

	slices.SortFunc(backups, func(a, b BackupInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return backups, nil
}

// Get returns a generated backup by file name.
func (s *Service) Get(ctx context.Context, name string) (*BackupInfo, error) {
	if name != filepath.Base(name) || !strings.HasPrefix(name, FilePrefix) {
		return nil, ErrBackupNotFound
	}
	path := filepath.Join(s.backupDir, name)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &BackupInfo{
		Name:      name,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: takenAt(name, info.ModTime()),
	}, nil
}

// Delete removes a generated backup.
func (s *Service) Delete(ctx context.Context, name string) error {
	b, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	return os.Remove(b.Path)
}

// takenAt reads the timestamp embedded in a generated file name.
func takenAt(name string, fallback time.Time) time.Time {
	stem := strings.TrimPrefix(name, FilePrefix)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	ms, err := strconv.ParseInt(stem, 10, 64)
	if err != nil {
		return fallback
	}
	return time.UnixMilli(ms)
}
