// Package export turns a topic into a fixed-format PDF. Blocks are rendered
// from markdown, captured as a bitmap by headless Chrome, scaled to the page
// width and tiled over as many pages as needed.
package export

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"time"

	"notemaster/pkg/editor"
	"notemaster/pkg/errors"
	"notemaster/pkg/utils"
)

// Rasterizer captures rendered HTML and prints page HTML to PDF
type Rasterizer interface {
	Capture(ctx context.Context, html string) (*Capture, error)
	PrintPDF(ctx context.Context, html string, format PageFormat) ([]byte, error)
}

// Result is a finished export
type Result struct {
	Filename string `json:"filename"`
	Location string `json:"location,omitempty"`
	Pages    int    `json:"pages"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// Exporter renders documents to PDF
type Exporter struct {
	raster Rasterizer
	sink   Sink
	page   PageFormat
	now    func() time.Time
}

// NewExporter creates an exporter. sink may be nil to skip storing the file.
func NewExporter(raster Rasterizer, sink Sink, page PageFormat) *Exporter {
	return &Exporter{raster: raster, sink: sink, page: page, now: time.Now}
}

// Export produces the PDF for doc
func (e *Exporter) Export(ctx context.Context, doc *editor.Document) (*Result, error) {
	if e.raster == nil {
		return nil, ErrChromeMissing
	}

	html, err := RenderDocumentHTML(doc)
	if err != nil {
		return nil, exportError(err, doc, "render")
	}

	capture, err := e.raster.Capture(ctx, html)
	if err != nil {
		return nil, exportError(err, doc, "capture")
	}

	tiles := Layout(capture.Width, capture.Height, e.page)
	if len(tiles) == 0 {
		return nil, exportError(fmt.Errorf("empty capture %dx%d", capture.Width, capture.Height), doc, "layout")
	}

	pages, err := PagesHTML(capture.PNG, capture.Width, tiles, e.page)
	if err != nil {
		return nil, exportError(err, doc, "layout")
	}

	pdf, err := e.raster.PrintPDF(ctx, pages, e.page)
	if err != nil {
		return nil, exportError(err, doc, "print")
	}

	result := &Result{
		Filename: fmt.Sprintf("%s-%s.pdf", utils.SanitizeFilename(doc.Title), e.now().Format("20060102-150405")),
		Pages:    len(tiles),
		MimeType: "application/pdf",
		Data:     pdf,
	}

	if e.sink != nil {
		location, err := e.sink.Put(ctx, result.Filename, pdf, result.MimeType)
		if err != nil {
			return nil, exportError(err, doc, "store")
		}
		result.Location = location
	}

	log.Printf("Exported topic %s: %d page(s), %d bytes", doc.TopicID, result.Pages, len(pdf))
	return result, nil
}

func exportError(err error, doc *editor.Document, stage string) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.WithContext("topicId", doc.TopicID)
	}
	return errors.ErrExportFailed.WithCause(err).
		WithContext("topicId", doc.TopicID).
		WithContext("stage", stage)
}
