package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formset/pkg/upload"
)

const (
	DefaultMaxWidth    = 100
	DefaultMaxHeight   = 100
	DefaultConcurrency = 4
	// DefaultMaxPixels bounds the decoded size of an image (4096x4096).
	DefaultMaxPixels = 4096 * 4096
)

// ErrTooManyPixels reports an image whose dimensions exceed the pixel cap.
var ErrTooManyPixels = errors.New("preview: image dimensions exceed pixel limit")

// Preview is the thumbnail rendered for one selected file. Key and Position
// tie it to its own file so completion order never matters.
type Preview struct {
	Key         string `json:"key"`
	Position    int    `json:"position"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	DataURI     string `json:"dataUri"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Scaled      bool   `json:"scaled"`
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxSize sets the thumbnail bounding box.
func WithMaxSize(width, height int) Option {
	return func(g *Generator) {
		if width > 0 {
			g.maxWidth = width
		}
		if height > 0 {
			g.maxHeight = height
		}
	}
}

// WithConcurrency bounds how many files are read at once.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithMaxPixels caps width*height of images decoded for thumbnails. Larger
// images fall back to the raw data URI without being decoded.
func WithMaxPixels(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxPixels = n
		}
	}
}

// WithKeyFunc overrides preview key generation.
func WithKeyFunc(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newKey = fn
		}
	}
}

// Generator reads selected files and produces thumbnails.
type Generator struct {
	maxWidth    int
	maxHeight   int
	concurrency int
	maxPixels   int
	newKey      func() string
}

// New constructs a Generator.
func New(options ...Option) *Generator {
	g := &Generator{
		maxWidth:    DefaultMaxWidth,
		maxHeight:   DefaultMaxHeight,
		concurrency: DefaultConcurrency,
		maxPixels:   DefaultMaxPixels,
		newKey:      uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Generate reads every file concurrently. Results are returned in selection
// order; each worker writes only its own slot.
func (g *Generator) Generate(ctx context.Context, files []upload.File) ([]Preview, error) {
	if len(files) == 0 {
		return nil, nil
	}
	out := make([]Preview, len(files))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)
	for idx, file := range files {
		group.Go(func() error {
			p, err := g.One(ctx, idx, file)
			if err != nil {
				return err
			}
			out[idx] = p
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// One builds the preview for a single file.
func (g *Generator) One(ctx context.Context, position int, file upload.File) (Preview, error) {
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}
	data, err := file.ReadAll()
	if err != nil {
		return Preview{}, fmt.Errorf("preview: %w", err)
	}

	p := Preview{
		Key:         g.newKey(),
		Position:    position,
		Filename:    file.Name,
		ContentType: file.MediaType(),
	}

	thumb, width, height, err := g.thumbnail(data)
	if err != nil {
		p.DataURI = dataURI(p.ContentType, data)
		return p, nil
	}
	p.DataURI = dataURI("image/png", thumb)
	p.Width = width
	p.Height = height
	p.Scaled = true
	return p, nil
}

func (g *Generator) thumbnail(data []byte) ([]byte, int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(g.maxPixels) {
		return nil, 0, 0, ErrTooManyPixels
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}
	bounds := src.Bounds()
	width, height := Fit(bounds.Dx(), bounds.Dy(), g.maxWidth, g.maxHeight)
	if width == 0 || height == 0 {
		return nil, 0, 0, fmt.Errorf("preview: empty image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, 0, 0, fmt.Errorf("preview: encode thumbnail: %w", err)
	}
	return buf.Bytes(), width, height, nil
}

// Fit scales width x height down into the maxWidth x maxHeight box keeping
// the aspect ratio. Images that already fit are not enlarged.
func Fit(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	scaleW := float64(maxWidth) / float64(width)
	scaleH := float64(maxHeight) / float64(height)
	scale := min(scaleW, scaleH)
	return max(1, int(float64(width)*scale+0.5)), max(1, int(float64(height)*scale+0.5))
}

func dataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
