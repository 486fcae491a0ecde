package s0_data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/radar/internal/contracts"
)

// DateLayout is the trade date format used in documents and keys
const DateLayout = "2006-01-02"

// Document is a batch of snapshots sharing one trade date
type Document struct {
	Date      string               `json:"date" yaml:"date"`
	Snapshots []contracts.Snapshot `json:"snapshots" yaml:"snapshots"`
}

// TradeDate parses Date
func (d *Document) TradeDate() (time.Time, error) {
	if d.Date == "" {
		return time.Time{}, fmt.Errorf("document date is required")
	}
	t, err := time.Parse(DateLayout, d.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid document date %q: %w", d.Date, err)
	}
	return t, nil
}

// ParseDocument decodes a JSON or YAML document and stamps every snapshot with its date.
// Unknown fields are rejected in both formats.
func ParseDocument(data []byte, format string) (*Document, error) {
	var doc Document

	switch strings.ToLower(format) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json document: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document format: %q", format)
	}

	date, err := doc.TradeDate()
	if err != nil {
		return nil, err
	}
	for i := range doc.Snapshots {
		doc.Snapshots[i].Date = date
	}

	return &doc, nil
}

// FormatFromPath infers the document format from the file extension
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// FileSource serves snapshots from a local JSON/YAML document
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed snapshot source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source
func (s *FileSource) Name() string {
	return "file:" + filepath.Base(s.path)
}

// Load reads and parses the whole document
func (s *FileSource) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return ParseDocument(data, FormatFromPath(s.path))
}

// ListByDate returns the document's snapshots. A zero date accepts the
// document date; any other date must match it.
func (s *FileSource) ListByDate(ctx context.Context, date time.Time) ([]contracts.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	if !date.IsZero() && doc.Date != date.Format(DateLayout) {
		return nil, fmt.Errorf("%s holds %s, not %s", s.path, doc.Date, date.Format(DateLayout))
	}
	return doc.Snapshots, nil
}

// DocumentSource serves an already-parsed document (e.g. an API request body)
type DocumentSource struct {
	name string
	doc  *Document
}

// NewDocumentSource wraps doc under the given source name
func NewDocumentSource(name string, doc *Document) *DocumentSource {
	return &DocumentSource{name: name, doc: doc}
}

// Name identifies the source
func (s *DocumentSource) Name() string {
	return s.name
}

// ListByDate returns the document's snapshots; a non-zero date must match
func (s *DocumentSource) ListByDate(ctx context.Context, date time.Time) ([]contracts.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !date.IsZero() && s.doc.Date != date.Format(DateLayout) {
		return nil, fmt.Errorf("document holds %s, not %s", s.doc.Date, date.Format(DateLayout))
	}
	return s.doc.Snapshots, nil
}
