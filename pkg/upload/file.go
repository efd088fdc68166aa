package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const genericContentType = "application/octet-stream"

// File is one selected file: what the browser exposes as name, size and
// type, plus a way to read its bytes.
type File struct {
	Name        string
	Size        int64
	ContentType string

	open func() (io.ReadCloser, error)
}

// NewFile builds a File from an opener.
func NewFile(name string, size int64, contentType string, open func() (io.ReadCloser, error)) File {
	return File{Name: name, Size: size, ContentType: contentType, open: open}
}

// FromBytes builds an in-memory File. An empty contentType is sniffed.
func FromBytes(name, contentType string, data []byte) File {
	if isGeneric(contentType) {
		contentType = mimetype.Detect(data).String()
	}
	payload := bytes.Clone(data)
	return NewFile(name, int64(len(payload)), contentType, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	})
}

// FromHeader adapts a multipart upload. The declared Content-Type is kept;
// when it is missing or generic the content is sniffed.
func FromHeader(header *multipart.FileHeader) (File, error) {
	if header == nil {
		return File{}, fmt.Errorf("upload: file header is nil")
	}
	contentType := header.Header.Get("Content-Type")
	open := func() (io.ReadCloser, error) {
		return header.Open()
	}
	if isGeneric(contentType) {
		detected, err := sniff(open)
		if err != nil {
			return File{}, fmt.Errorf("upload: sniff %q: %w", header.Filename, err)
		}
		contentType = detected
	}
	return NewFile(header.Filename, header.Size, contentType, open), nil
}

// FromHeaders adapts every header, stopping at the first failure.
func FromHeaders(headers []*multipart.FileHeader) ([]File, error) {
	files := make([]File, 0, len(headers))
	for _, header := range headers {
		file, err := FromHeader(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// FromPath adapts a file on disk, sniffing its type from content.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("upload: stat %q: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("upload: %q is a directory", path)
	}
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("upload: detect %q: %w", path, err)
	}
	return NewFile(filepath.Base(path), info.Size(), detected.String(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// Open returns a reader over the file contents.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("upload: file %q has no content", f.Name)
	}
	return f.open()
}

// ReadAll reads the whole file.
func (f File) ReadAll() ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("upload: read %q: %w", f.Name, err)
	}
	return data, nil
}

// MediaType returns the content type without parameters.
func (f File) MediaType() string {
	mediaType, _, _ := strings.Cut(f.ContentType, ";")
	return strings.TrimSpace(mediaType)
}

func sniff(open func() (io.ReadCloser, error)) (string, error) {
	rc, err := open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()
	detected, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", err
	}
	return detected.String(), nil
}

func isGeneric(contentType string) bool {
	contentType = strings.TrimSpace(contentType)
	return contentType == "" || strings.EqualFold(contentType, genericContentType)
}
