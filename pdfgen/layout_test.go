package pdfgen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitToPageNoScaleWithinBounds(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"small square", 100, 100},
		{"exact usable width", 512, 300},
		{"exact usable height", 300, 692},
		{"exact usable both", 512, 692},
		{"one pixel", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FitToPage(tt.w, tt.h, PageWidth, PageHeight, PageMargin)
			assert.Equal(t, float64(tt.w), p.W, "width must be unchanged")
			assert.Equal(t, float64(tt.h), p.H, "height must be unchanged")
		})
	}
}

func TestFitToPageDownscale(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"wide", 2000, 500},
		{"tall", 500, 3000},
		{"both oversized", 4000, 3000},
		{"barely over width", 513, 100},
		{"barely over height", 100, 693},
		{"huge", 100000, 100000},
	}
	maxW := PageWidth - 2*PageMargin
	maxH := PageHeight - 2*PageMargin
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FitToPage(tt.w, tt.h, PageWidth, PageHeight, PageMargin)

			assert.LessOrEqual(t, p.W, maxW, "scaled width must fit usable area")
			assert.LessOrEqual(t, p.H, maxH, "scaled height must fit usable area")
			assert.Greater(t, p.W, 0.0)
			assert.Greater(t, p.H, 0.0)

			// aspect ratio preserved within flooring error
			srcRatio := float64(tt.w) / float64(tt.h)
			outRatio := p.W / p.H
			assert.InDelta(t, srcRatio, outRatio, srcRatio*0.02, "aspect ratio must be preserved within rounding")

			// scaled dimensions are floored to whole units
			assert.Equal(t, math.Floor(p.W), p.W)
			assert.Equal(t, math.Floor(p.H), p.H)
		})
	}
}

func TestFitToPageCentering(t *testing.T) {
	p := FitToPage(2000, 500, PageWidth, PageHeight, PageMargin)
	assert.Equal(t, (PageWidth-p.W)/2, p.X)
	assert.Equal(t, (PageHeight-p.H)/2, p.Y)

	p = FitToPage(100, 100, PageWidth, PageHeight, PageMargin)
	assert.Equal(t, 256.0, p.X)
	assert.Equal(t, 346.0, p.Y)
}

func TestFitToPageUsesSmallerRatio(t *testing.T) {
	// width is the binding constraint: 1024 -> 512 halves the height too
	p := FitToPage(1024, 600, PageWidth, PageHeight, PageMargin)
	assert.Equal(t, 512.0, p.W)
	assert.Equal(t, 300.0, p.H)

	// height is the binding constraint
	p = FitToPage(600, 1384, PageWidth, PageHeight, PageMargin)
	assert.Equal(t, 300.0, p.W)
	assert.Equal(t, 692.0, p.H)
}
