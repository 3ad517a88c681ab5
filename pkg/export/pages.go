package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
)

type pageData struct {
	Page  PageFormat
	Image template.URL
	Tiles []tileData
}

type tileData struct {
	Tile
	OffsetMM float64
	HeightMM float64
}

var pagesTemplate = template.Must(template.New("pages").Funcs(template.FuncMap{
	"mm": func(v float64) string { return fmt.Sprintf("%.3fmm", v) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    @page { size: {{mm .Page.WidthMM}} {{mm .Page.HeightMM}}; margin: 0; }
    html, body { margin: 0; padding: 0; background: #fff; }
    .page { position: relative; width: {{mm .Page.WidthMM}}; height: {{mm .Page.HeightMM}}; overflow: hidden; page-break-after: always; }
    .page:last-child { page-break-after: auto; }
    .tile { position: absolute; left: 0; top: 0; width: 100%; overflow: hidden; }
    .tile img { display: block; width: {{mm .Page.WidthMM}}; }
  </style>
</head>
<body>
{{range .Tiles}}  <div class="page"><div class="tile" style="height: {{mm .HeightMM}}"><img src="{{$.Image}}" style="margin-top: -{{mm .OffsetMM}}"></div></div>
{{end}}</body>
</html>`))

// PagesHTML lays the captured PNG out as one page-sized tile per page
func PagesHTML(png []byte, imgW int, tiles []Tile, page PageFormat) (string, error) {
	if imgW <= 0 {
		return "", fmt.Errorf("invalid bitmap width %d", imgW)
	}
	mmPerPx := page.WidthMM / float64(imgW)

	data := pageData{
		Page:  page,
		Image: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
	}
	for _, t := range tiles {
		data.Tiles = append(data.Tiles, tileData{
			Tile:     t,
			OffsetMM: float64(t.Offset) * mmPerPx,
			HeightMM: float64(t.Height) * mmPerPx,
		})
	}

	var buf bytes.Buffer
	if err := pagesTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
