package formset

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-formset/pkg/upload"
)

// DefaultMaxMemory bounds the in-memory part of a parsed multipart body.
const DefaultMaxMemory = 32 << 20

// Submission is what a page produced for one group.
type Submission struct {
	Prefix string
	Total  int
	Rows   []SubmittedRow
}

// SubmittedRow is one indexed row of a submission.
type SubmittedRow struct {
	Index  int
	ID     string
	Post   string
	Delete bool
	Files  []*multipart.FileHeader
}

// Empty reports whether the row carries neither files nor an existing id.
func (r SubmittedRow) Empty() bool {
	return len(r.Files) == 0 && strings.TrimSpace(r.ID) == ""
}

// Decode reads the management counter for cfg and returns rows 0..total-1.
// files may be nil for urlencoded submissions.
func Decode(cfg Config, values url.Values, files map[string][]*multipart.FileHeader) (*Submission, error) {
	cfg = cfg.Normalize()
	name := TotalFormsName(cfg.Prefix)

	raw, ok := values[name]
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCounter, name)
	}
	total, err := parseCounter(raw[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidCounter, name, raw[0])
	}
	if total > cfg.MaxRows {
		return nil, &LimitError{Prefix: cfg.Prefix, Max: cfg.MaxRows, Key: cfg.LimitKey}
	}

	sub := &Submission{Prefix: cfg.Prefix, Total: total, Rows: make([]SubmittedRow, 0, total)}
	for idx := 0; idx < total; idx++ {
		row := SubmittedRow{
			Index:  idx,
			ID:     values.Get(FieldName(cfg.Prefix, idx, FieldID)),
			Post:   values.Get(FieldName(cfg.Prefix, idx, FieldPost)),
			Delete: truthy(values.Get(FieldName(cfg.Prefix, idx, FieldDelete))),
		}
		if files != nil {
			row.Files = files[FieldName(cfg.Prefix, idx, FieldImage)]
		}
		sub.Rows = append(sub.Rows, row)
	}
	return sub, nil
}

// DecodeRequest parses r and decodes the group for cfg.
func DecodeRequest(cfg Config, r *http.Request, maxMemory int64) (*Submission, error) {
	if r == nil {
		return nil, fmt.Errorf("formset: request is nil")
	}
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/") {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("formset: parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("formset: parse form: %w", err)
	}

	var files map[string][]*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File
	}
	return Decode(cfg, r.Form, files)
}

// Kept returns rows not flagged for deletion.
func (s *Submission) Kept() []SubmittedRow {
	out := make([]SubmittedRow, 0, len(s.Rows))
	for _, row := range s.Rows {
		if !row.Delete {
			out = append(out, row)
		}
	}
	return out
}

// Files flattens uploaded files of kept rows in index order.
func (s *Submission) Files() ([]upload.File, error) {
	var out []upload.File
	for _, row := range s.Kept() {
		files, err := upload.FromHeaders(row.Files)
		if err != nil {
			return nil, fmt.Errorf("formset: %s: %w", FieldName(s.Prefix, row.Index, FieldImage), err)
		}
		out = append(out, files...)
	}
	return out, nil
}

// Check re-validates uploaded files against rules, row by row.
func (s *Submission) Check(rules upload.Rules) error {
	for _, row := range s.Kept() {
		files, err := upload.FromHeaders(row.Files)
		if err != nil {
			return fmt.Errorf("formset: %s: %w", FieldName(s.Prefix, row.Index, FieldImage), err)
		}
		if err := rules.Check(files); err != nil {
			return fmt.Errorf("formset: %s: %w", FieldName(s.Prefix, row.Index, FieldImage), err)
		}
	}
	return nil
}
