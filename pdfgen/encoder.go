package pdfgen

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

// Embedded images are normalized to JPEG at this quality before placement.
const embeddedJPEGQuality = 90

const decodeFailureNotice = "Error: Could not process image"

// DecodeError indicates the source bytes are not a valid raster image. The
// encoder recovers from it locally by emitting a placeholder line; it never
// propagates past the encoder boundary.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encoder renders single-document PDFs: one title + one image per page, with
// a timestamp footer. Now is swappable for tests.
type Encoder struct {
	Brand string
	Now   func() time.Time
}

func NewEncoder(brand string) *Encoder {
	return &Encoder{Brand: brand, Now: time.Now}
}

// newLetterPDF creates a point-unit Letter page document with automatic page
// breaks disabled; all layout in this package is absolute.
func newLetterPDF() *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// textCentered draws s horizontally centered at baseline y.
func textCentered(pdf *fpdf.Fpdf, s string, y float64) {
	w := pdf.GetStringWidth(s)
	pdf.Text((PageWidth-w)/2, y, s)
}

// EncodeImage renders exactly one titled page to w: the decoded and
// fit-to-page scaled image when data is a valid raster image, or a textual
// placeholder when it is not. The page is always emitted; the returned error
// is non-nil only when the destination cannot be written.
func (e *Encoder) EncodeImage(data []byte, title string, w io.Writer) error {
	pdf := newLetterPDF()
	pdf.SetCreationDate(e.Now())
	pdf.SetModificationDate(e.Now())
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	textCentered(pdf, title, PageMargin)

	if err := placeImage(pdf, data); err != nil {
		log.Printf("pdfgen: %v; emitting placeholder for %q", err, title)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(PageMargin, 100, decodeFailureNotice)
	}

	e.drawFooter(pdf)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to encode document PDF %q: %w", title, err)
	}
	return nil
}

// drawFooter writes the italic generation line and brand string near the
// bottom edge.
func (e *Encoder) drawFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 10)
	y := PageHeight - 30
	pdf.Text(PageMargin, y, fmt.Sprintf("Generated: %s", e.Now().Format("2006-01-02 15:04")))
	pdf.Text(PageWidth-150, y, e.Brand)
}

// placeImage decodes data, scales it to the usable page area and draws it
// centered. Undecodable data yields a DecodeError for the caller's fallback.
func placeImage(pdf *fpdf.Fpdf, data []byte) error {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return &DecodeError{Err: err}
	}

	bounds := img.Bounds()
	place := FitToPage(bounds.Dx(), bounds.Dy(), PageWidth, PageHeight, PageMargin)

	// normalize to JPEG so every source format shares one embed path
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(embeddedJPEGQuality)); err != nil {
		return fmt.Errorf("failed to re-encode image for embedding: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("document-image", opts, &buf)
	pdf.ImageOptions("document-image", place.X, place.Y, place.W, place.H, false, opts, 0, "")
	return nil
}
