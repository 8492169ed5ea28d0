package intake

import (
	"path/filepath"
	"strings"

	"github.com/ssenyonga-git/docsysbackend/models"
)

// Bucket describes one named upload field and how its files are normalized.
type Bucket struct {
	Type        models.DocumentType
	TitleFormat string // encoder title per file, e.g. "Passport Photo %d"
	FilePrefix  string // stored filename prefix, e.g. "passport_photo"

	// AllowPDFPassthrough controls the extension rule: buckets with it set
	// store *.pdf uploads verbatim. The passport photos bucket keeps it off
	// so every file there is re-encoded, PDFs included.
	AllowPDFPassthrough bool
}

// Buckets lists the image-derived intake buckets in category order.
var Buckets = []Bucket{
	{Type: models.DocTypePassportPhotos, TitleFormat: "Passport Photo %d", FilePrefix: "passport_photo"},
	{Type: models.DocTypePassportBook, TitleFormat: "Passport Book Page %d", FilePrefix: "passport_book", AllowPDFPassthrough: true},
	{Type: models.DocTypeYellowFever, TitleFormat: "Yellow Fever Certificate %d", FilePrefix: "yellow_fever", AllowPDFPassthrough: true},
}

var supportedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// IsRasterImage checks if the filename has a common raster image extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

// IsPDF checks if the filename has a .pdf extension, case-insensitively
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
