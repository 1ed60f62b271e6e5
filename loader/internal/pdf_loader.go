package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rag/types"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFLoader loads every PDF in the data directory into per-page Documents.
type PDFLoader struct {
	cfg types.LoaderConfig
}

func NewPDFLoader(cfg types.LoaderConfig) *PDFLoader {
	return &PDFLoader{cfg: cfg}
}

// LoadDocuments walks the data directory in lexical order and extracts one
// Document per non-empty page. Deterministic ordering matters: chunk IDs
// derive from the (source, page) sequence.
func (l *PDFLoader) LoadDocuments() ([]types.Document, error) {
	entries, err := os.ReadDir(l.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(l.cfg.DataDir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", l.cfg.DataDir)
	}

	var docs []types.Document
	for _, path := range paths {
		pages, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		docs = append(docs, pages...)
	}
	return docs, nil
}

func (l *PDFLoader) loadFile(path string) ([]types.Document, error) {
	extractPath := path

	if l.cfg.CropTop > 0 || l.cfg.CropBottom > 0 {
		tmp, err := os.CreateTemp("", "rag-crop-*.pdf")
		if err != nil {
			return nil, fmt.Errorf("create temp file: %w", err)
		}
		tmpPath := tmp.Name()
		tmp.Close()
		defer os.Remove(tmpPath)

		if err := RemoveHeaderFooterCrop(path, tmpPath, l.cfg.CropTop, l.cfg.CropBottom); err != nil {
			return nil, err
		}
		extractPath = tmpPath
	}

	return ExtractPages(extractPath, path)
}

// ExtractPages returns one Document per non-empty page of the PDF at
// extractPath. Documents carry source (the original corpus path) and a
// zero-based page number.
func ExtractPages(extractPath, source string) ([]types.Document, error) {
	f, reader, err := pdflib.Open(extractPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var docs []types.Document
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		docs = append(docs, types.Document{
			Text:   text,
			Source: source,
			Page:   i - 1,
		})
	}
	return docs, nil
}
