package pdfgen

import "math"

// Page geometry shared by every generated PDF: US Letter in PDF points.
const (
	PageWidth  = 612.0
	PageHeight = 792.0
	PageMargin = 50.0
)

// Placement describes where a scaled image lands on a page. W and H are the
// output dimensions; X and Y are the top-left offset from the page origin.
type Placement struct {
	W float64
	H float64
	X float64
	Y float64
}

// FitToPage computes an aspect-preserving fit of an image into the usable
// area of a page (page size minus the margin on each side), centered both
// ways. Images already within the usable area keep their exact dimensions;
// larger images are scaled by the smaller of the two axis ratios and the
// scaled dimensions are floored.
func FitToPage(imgWidth, imgHeight int, pageW, pageH, margin float64) Placement {
	maxW := pageW - 2*margin
	maxH := pageH - 2*margin

	outW := float64(imgWidth)
	outH := float64(imgHeight)

	if outW > maxW || outH > maxH {
		ratio := math.Min(maxW/outW, maxH/outH)
		outW = math.Floor(outW * ratio)
		outH = math.Floor(outH * ratio)
	}

	return Placement{
		W: outW,
		H: outH,
		X: (pageW - outW) / 2,
		Y: (pageH - outH) / 2,
	}
}
