package preview_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/preview"
	"github.com/goliatone/go-formset/pkg/upload"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateScalesIntoBox(t *testing.T) {
	gen := preview.New(preview.WithKeyFunc(func() string { return "k" }))
	files := []upload.File{upload.FromBytes("wide.png", "image/png", pngBytes(t, 400, 200))}

	previews, err := gen.Generate(context.Background(), files)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(previews) != 1 {
		t.Fatalf("expected one preview, got %d", len(previews))
	}
	p := previews[0]
	if !p.Scaled || p.Width != 100 || p.Height != 50 {
		t.Fatalf("unexpected thumbnail size %dx%d (scaled=%v)", p.Width, p.Height, p.Scaled)
	}
	if !strings.HasPrefix(p.DataURI, "data:image/png;base64,") {
		t.Fatalf("unexpected data uri prefix %q", p.DataURI[:32])
	}
}

func TestGenerateFallsBackToRawBytes(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"></svg>`)
	gen := preview.New()

	previews, err := gen.Generate(context.Background(), []upload.File{
		upload.FromBytes("logo.svg", "image/svg+xml", svg),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if previews[0].Scaled {
		t.Fatalf("expected undecodable image to skip scaling")
	}
	if !strings.HasPrefix(previews[0].DataURI, "data:image/svg+xml;base64,") {
		t.Fatalf("unexpected data uri %q", previews[0].DataURI)
	}
}

func TestGenerateSkipsDecodeAbovePixelCap(t *testing.T) {
	data := pngBytes(t, 200, 200)
	gen := preview.New(preview.WithMaxPixels(100 * 100))

	previews, err := gen.Generate(context.Background(), []upload.File{
		upload.FromBytes("huge.png", "image/png", data),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	p := previews[0]
	if p.Scaled || p.Width != 0 || p.Height != 0 {
		t.Fatalf("expected raw fallback above the pixel cap, got %dx%d (scaled=%v)", p.Width, p.Height, p.Scaled)
	}
	if !strings.HasPrefix(p.DataURI, "data:image/png;base64,") {
		t.Fatalf("unexpected data uri prefix %q", p.DataURI[:32])
	}
}

// Files finish in reverse order; each preview must still land on its own file.
func TestGenerateKeepsPreviewsKeyedToFiles(t *testing.T) {
	const count = 4
	var started atomic.Int32
	release := make([]chan struct{}, count)
	files := make([]upload.File, count)
	for i := range files {
		release[i] = make(chan struct{})
		data := pngBytes(t, 4, 4)
		gate := release[i]
		files[i] = upload.NewFile(fmt.Sprintf("f%d.png", i), int64(len(data)), "image/png", func() (io.ReadCloser, error) {
			started.Add(1)
			<-gate
			return io.NopCloser(bytes.NewReader(data)), nil
		})
	}

	go func() {
		for started.Load() < count {
			time.Sleep(time.Millisecond)
		}
		for i := count - 1; i >= 0; i-- {
			close(release[i])
			time.Sleep(2 * time.Millisecond)
		}
	}()

	previews, err := preview.New(preview.WithConcurrency(count)).Generate(context.Background(), files)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var names []string
	for idx, p := range previews {
		names = append(names, p.Filename)
		if p.Position != idx {
			t.Fatalf("preview %d carries position %d", idx, p.Position)
		}
	}
	if diff := cmp.Diff([]string{"f0.png", "f1.png", "f2.png", "f3.png"}, names); diff != "" {
		t.Fatalf("preview order mismatch (-want +got):\n%s", diff)
	}
}

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, wantW, wantH int
	}{
		{50, 20, 50, 20},
		{200, 100, 100, 50},
		{100, 400, 25, 100},
		{0, 10, 0, 0},
	}
	for _, tc := range cases {
		gotW, gotH := preview.Fit(tc.w, tc.h, 100, 100)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Fatalf("Fit(%d,%d) = %dx%d, want %dx%d", tc.w, tc.h, gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}

func TestContainerStripsMarkupFromLabels(t *testing.T) {
	container := preview.Container([]preview.Preview{
		{Key: "a", Filename: "<b>cat</b>.png", DataURI: "data:image/png;base64,AA=="},
	})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(container.String()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Find(".image-preview-name").Text(); got != "cat.png" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := doc.Find("img").AttrOr("data-preview-key", ""); got != "a" {
		t.Fatalf("unexpected preview key %q", got)
	}
	if preview.Container(nil) != nil {
		t.Fatalf("expected nil container for empty selection")
	}
}
