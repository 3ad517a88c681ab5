package export

import (
	"fmt"
	"strings"
)

// PageFormat is a fixed paper size
type PageFormat struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

var (
	A4     = PageFormat{Name: "a4", WidthMM: 210, HeightMM: 297}
	Letter = PageFormat{Name: "letter", WidthMM: 215.9, HeightMM: 279.4}
)

const mmPerInch = 25.4

// WidthInches returns the paper width in inches
func (p PageFormat) WidthInches() float64 { return p.WidthMM / mmPerInch }

// HeightInches returns the paper height in inches
func (p PageFormat) HeightInches() float64 { return p.HeightMM / mmPerInch }

// ParsePageFormat resolves a format name; empty means A4
func ParsePageFormat(name string) (PageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "a4":
		return A4, nil
	case "letter":
		return Letter, nil
	}
	return PageFormat{}, fmt.Errorf("unknown page format %q", name)
}

// Tile is the slice of the captured bitmap shown on one page, in bitmap pixels
type Tile struct {
	Page   int `json:"page"`
	Offset int `json:"offset"`
	Height int `json:"height"`
}

// Layout scales a bitmap of imgW x imgH pixels to the page width and cuts it
// into page-high tiles. The last tile is clamped to the bitmap's end.
func Layout(imgW, imgH int, page PageFormat) []Tile {
	if imgW <= 0 || imgH <= 0 || page.WidthMM <= 0 || page.HeightMM <= 0 {
		return nil
	}

	// Height of one page expressed in bitmap pixels at page-width scale.
	pageH := int(float64(imgW) * page.HeightMM / page.WidthMM)
	if pageH <= 0 {
		pageH = 1
	}

	var tiles []Tile
	for offset := 0; offset < imgH; offset += pageH {
		h := pageH
		if offset+h > imgH {
			h = imgH - offset
		}
		tiles = append(tiles, Tile{Page: len(tiles) + 1, Offset: offset, Height: h})
	}
	return tiles
}
