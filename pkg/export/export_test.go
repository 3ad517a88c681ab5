package export

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notemaster/pkg/editor"
	"notemaster/pkg/errors"
	"notemaster/pkg/models"
)

func TestRenderMarkdownHighlightsCode(t *testing.T) {
	html, err := RenderMarkdown("# Title\n\n```go\nfmt.Println(\"hi\")\n```\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<pre")
	assert.Contains(t, html, "style=")
	assert.Contains(t, html, "Println")
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	html, err := RenderMarkdown("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderDocumentHTMLSkipsEmptyBlocks(t *testing.T) {
	doc := &editor.Document{
		TopicID: "t1",
		Title:   "Biology <101>",
		Blocks: []models.Block{
			{ID: "a", Content: "**cells**"},
			{ID: "b", Content: ""},
			{ID: "c", Content: "- one\n- two"},
		},
	}
	html, err := RenderDocumentHTML(doc)
	require.NoError(t, err)
	assert.Contains(t, html, `id="notes"`)
	assert.Contains(t, html, "Biology &lt;101&gt;")
	assert.Contains(t, html, "<strong>cells</strong>")
	assert.Contains(t, html, "<li>two</li>")
	assert.Equal(t, 2, strings.Count(html, `class="block"`))
}

func TestLayout(t *testing.T) {
	// 210 px wide means one page is 297 px high.
	tests := []struct {
		name   string
		w, h   int
		expect []Tile
	}{
		{"empty", 0, 100, nil},
		{"shorter than a page", 210, 100, []Tile{{Page: 1, Offset: 0, Height: 100}}},
		{"exactly one page", 210, 297, []Tile{{Page: 1, Offset: 0, Height: 297}}},
		{"last page clamped", 210, 700, []Tile{
			{Page: 1, Offset: 0, Height: 297},
			{Page: 2, Offset: 297, Height: 297},
			{Page: 3, Offset: 594, Height: 106},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Layout(tt.w, tt.h, A4))
		})
	}
}

func TestLayoutCoversBitmap(t *testing.T) {
	tiles := Layout(794, 5000, Letter)
	total := 0
	for i, tile := range tiles {
		assert.Equal(t, total, tile.Offset)
		assert.Equal(t, i+1, tile.Page)
		total += tile.Height
	}
	assert.Equal(t, 5000, total)
}

func TestParsePageFormat(t *testing.T) {
	f, err := ParsePageFormat("")
	require.NoError(t, err)
	assert.Equal(t, A4, f)
	f, err = ParsePageFormat("Letter")
	require.NoError(t, err)
	assert.Equal(t, Letter, f)
	_, err = ParsePageFormat("tabloid")
	assert.Error(t, err)
}

func TestPagesHTML(t *testing.T) {
	tiles := Layout(210, 400, A4)
	html, err := PagesHTML([]byte{1, 2, 3}, 210, tiles, A4)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(html, `class="page"`))
	assert.Contains(t, html, "data:image/png;base64,AQID")
	assert.Contains(t, html, "297.000mm")
	assert.Contains(t, html, "margin-top: -297.000mm")
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

type fakeRaster struct {
	capture   *Capture
	captured  string
	printed   string
	format    PageFormat
	printErr  error
	captureCt int
}

func (f *fakeRaster) Capture(_ context.Context, html string) (*Capture, error) {
	f.captured = html
	f.captureCt++
	return f.capture, nil
}

func (f *fakeRaster) PrintPDF(_ context.Context, html string, format PageFormat) ([]byte, error) {
	f.printed = html
	f.format = format
	if f.printErr != nil {
		return nil, f.printErr
	}
	return []byte("%PDF-1.4 fake"), nil
}

func sampleDoc() *editor.Document {
	return &editor.Document{
		TopicID: "t1",
		Title:   "Cell Biology",
		Blocks:  []models.Block{{ID: "a", Content: "Mitochondria"}},
	}
}

func TestExporterWritesPDFToSink(t *testing.T) {
	raster := &fakeRaster{capture: &Capture{PNG: testPNG(t, 210, 600), Width: 210, Height: 600}}
	dir := t.TempDir()
	exp := NewExporter(raster, FileSink{Dir: dir}, A4)

	result, err := exp.Export(context.Background(), sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, "application/pdf", result.MimeType)
	assert.True(t, strings.HasPrefix(result.Filename, "Cell-Biology-"))
	assert.Equal(t, A4, raster.format)
	assert.Contains(t, raster.captured, "Mitochondria")
	assert.Equal(t, 3, strings.Count(raster.printed, `class="page"`))

	data, err := os.ReadFile(filepath.Join(dir, result.Filename))
	require.NoError(t, err)
	assert.Equal(t, result.Data, data)
	assert.Equal(t, filepath.Join(dir, result.Filename), result.Location)
}

func TestExporterWrapsFailures(t *testing.T) {
	raster := &fakeRaster{
		capture:  &Capture{PNG: testPNG(t, 10, 10), Width: 10, Height: 10},
		printErr: stderrors.New("browser crashed"),
	}
	_, err := NewExporter(raster, nil, Letter).Export(context.Background(), sampleDoc())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrExportFailed))
}

func TestExporterWithoutChrome(t *testing.T) {
	_, err := NewExporter(nil, nil, A4).Export(context.Background(), sampleDoc())
	assert.True(t, stderrors.Is(err, ErrChromeMissing))
}
