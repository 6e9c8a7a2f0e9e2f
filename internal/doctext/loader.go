package doctext

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/project-compass/docpipe/internal/common"
)

// Loader turns a stored document into plain text for extraction.
type Loader interface {
	Load(ctx context.Context, storagePath string) (string, error)
}

// FileLoader reads PDFs via pdfcpu content extraction and anything else as
// plain text. Relative storage paths are resolved against baseDir (the
// upload directory); absolute paths are used as given. Callers treat a Load
// failure as "empty document", never as a fatal pipeline error.
type FileLoader struct {
	baseDir string
	log     *slog.Logger
}

func NewFileLoader(baseDir string, log *slog.Logger) *FileLoader {
	if log == nil {
		log = slog.Default()
	}
	return &FileLoader{baseDir: baseDir, log: log}
}

func (l *FileLoader) Load(_ context.Context, storagePath string) (string, error) {
	path := l.resolve(storagePath)
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", common.WrapError(err, "read document")
		}
		return string(b), nil
	}
	return l.loadPDF(path)
}

func (l *FileLoader) resolve(storagePath string) string {
	if l.baseDir == "" || filepath.IsAbs(storagePath) {
		return storagePath
	}
	return filepath.Join(l.baseDir, storagePath)
}

func (l *FileLoader) loadPDF(storagePath string) (string, error) {
	pages, err := api.PageCountFile(storagePath)
	if err != nil {
		return "", common.WrapError(err, "pdf page count")
	}

	tmp, err := os.MkdirTemp("", "docpipe-content-")
	if err != nil {
		return "", common.WrapError(err, "content temp dir")
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			l.log.Warn("doctext.tmp_cleanup_failed", "dir", tmp, "error", err)
		}
	}()

	if err := api.ExtractContentFile(storagePath, tmp, nil, nil); err != nil {
		return "", common.WrapError(err, "pdf content extract")
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		return "", common.WrapError(err, "read content dir")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(tmp, name))
		if err != nil {
			l.log.Warn("doctext.page_read_failed", "file", name, "error", err)
			continue
		}
		b.WriteString(scrapeText(string(raw)))
		b.WriteString(" ")
	}

	text := strings.TrimSpace(b.String())
	l.log.Debug("doctext.pdf_loaded", "path", storagePath, "pages", pages, "bytes", len(text))
	return text, nil
}
