package intake

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ssenyonga-git/docsysbackend/models"
	"github.com/ssenyonga-git/docsysbackend/pdfgen"
	"github.com/ssenyonga-git/docsysbackend/storage"
)

// fakeDocRepo is an in-memory DocumentRepositoryInterface implementation.
type fakeDocRepo struct {
	docs   []models.Document
	nextID uint
}

func (f *fakeDocRepo) Create(doc *models.Document) error {
	f.nextID++
	doc.ID = f.nextID
	if doc.UploadedAt == 0 {
		doc.UploadedAt = time.Now().Unix()
	}
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeDocRepo) GetByID(id uint) (*models.Document, error) {
	for i := range f.docs {
		if f.docs[i].ID == id {
			doc := f.docs[i]
			return &doc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDocRepo) ListByClient(clientID uint) ([]models.Document, error) {
	var out []models.Document
	for _, d := range f.docs {
		if d.ClientID == clientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocRepo) ListByClientAndType(clientID uint, docType models.DocumentType) ([]models.Document, error) {
	var out []models.Document
	for _, d := range f.docs {
		if d.ClientID == clientID && d.DocumentType == docType {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocRepo) CountByClientAndType(clientID uint, docType models.DocumentType) (int64, error) {
	docs, _ := f.ListByClientAndType(clientID, docType)
	return int64(len(docs)), nil
}

func (f *fakeDocRepo) CountsForClient(clientID uint) (map[models.DocumentType]int64, error) {
	counts := make(map[models.DocumentType]int64)
	for _, d := range f.docs {
		if d.ClientID == clientID {
			counts[d.DocumentType]++
		}
	}
	return counts, nil
}

func (f *fakeDocRepo) DeleteByClient(clientID uint) error {
	var kept []models.Document
	for _, d := range f.docs {
		if d.ClientID != clientID {
			kept = append(kept, d)
		}
	}
	f.docs = kept
	return nil
}

// fakeClientRepo records portfolio status updates; everything else is inert.
type fakeClientRepo struct {
	portfolioPath *string
	portfolioErr  error
	resultCalls   int
}

func (f *fakeClientRepo) Create(client *models.Client) error               { return nil }
func (f *fakeClientRepo) GetByID(id uint) (*models.Client, error)          { return nil, gorm.ErrRecordNotFound }
func (f *fakeClientRepo) GetByPassport(p string) (*models.Client, error)   { return nil, gorm.ErrRecordNotFound }
func (f *fakeClientRepo) Search(query string) ([]models.Client, error)     { return nil, nil }
func (f *fakeClientRepo) ListAll() ([]models.Client, error)                { return nil, nil }
func (f *fakeClientRepo) Delete(id uint) error                             { return nil }
func (f *fakeClientRepo) RequestPortfolio(clientID uint) error             { return nil }
func (f *fakeClientRepo) MarkPortfolioProcessing(clientID uint) error      { return nil }

func (f *fakeClientRepo) SetPortfolioResult(clientID uint, portfolioPath *string, taskErr error) error {
	f.resultCalls++
	f.portfolioPath = portfolioPath
	f.portfolioErr = taskErr
	return nil
}

func newTestProcessor(t *testing.T) (*Processor, *storage.LocalStore, *fakeDocRepo, *fakeClientRepo) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	docs := &fakeDocRepo{}
	clients := &fakeClientRepo{}

	frozen := func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }
	encoder := pdfgen.NewEncoder("Dubai Documents")
	encoder.Now = frozen
	compiler := pdfgen.NewCompiler(store, "Dubai Documents")
	compiler.Now = frozen

	return NewProcessor(store, docs, clients, encoder, compiler), store, docs, clients
}

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for x := 0; x < 120; x++ {
		for y := 0; y < 80; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func readStored(t *testing.T, store *storage.LocalStore, relPath string) []byte {
	t.Helper()
	rc, _, err := store.Open(relPath)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestProcessBatchPDFPassthrough(t *testing.T) {
	proc, store, docs, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	src := []byte("%PDF-1.4\noriginal scan bytes\n%%EOF\n")
	result, err := proc.ProcessBatch(client, Batch{
		PassportBook: []UploadedFile{{Name: "scan.PDF", Data: src}},
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Empty(t, result.Failed)

	doc := result.Created[0]
	assert.Equal(t, models.DocTypePassportBook, doc.DocumentType)
	assert.Equal(t, "1/passport_book_1.pdf", doc.FilePath)
	assert.Equal(t, src, readStored(t, store, doc.FilePath), "passthrough must store the upload byte for byte")
	assert.Len(t, docs.docs, 1)
}

func TestProcessBatchEncodesImages(t *testing.T) {
	proc, store, _, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	result, err := proc.ProcessBatch(client, Batch{
		PassportPhotos: []UploadedFile{{Name: "photo.jpg", Data: pngFixture(t)}},
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)

	stored := readStored(t, store, result.Created[0].FilePath)
	assert.True(t, bytes.HasPrefix(stored, []byte("%PDF-")), "image uploads must be normalized to PDF")
	assert.Equal(t, "1/passport_photo_1.pdf", result.Created[0].FilePath)
}

func TestProcessBatchPhotosNeverPassThrough(t *testing.T) {
	proc, store, _, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	src := []byte("%PDF-1.4\npre-made photo pdf\n%%EOF\n")
	result, err := proc.ProcessBatch(client, Batch{
		PassportPhotos: []UploadedFile{{Name: "photo.pdf", Data: src}},
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Empty(t, result.Failed, "undecodable input still yields a placeholder page, not a failure")

	stored := readStored(t, store, result.Created[0].FilePath)
	assert.NotEqual(t, src, stored, "passport photos are always re-encoded, even from PDF input")
	assert.True(t, bytes.HasPrefix(stored, []byte("%PDF-")))
}

func TestProcessBatchNumbersPerBucket(t *testing.T) {
	proc, _, _, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	pdf := []byte("%PDF-1.4\n%%EOF\n")
	result, err := proc.ProcessBatch(client, Batch{
		PassportBook: []UploadedFile{
			{Name: "a.pdf", Data: pdf},
			{Name: "b.pdf", Data: pdf},
		},
		YellowFever: []UploadedFile{{Name: "c.pdf", Data: pdf}},
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 3)

	var paths []string
	for _, d := range result.Created {
		paths = append(paths, d.FilePath)
	}
	assert.Contains(t, paths, "1/passport_book_1.pdf")
	assert.Contains(t, paths, "1/passport_book_2.pdf")
	assert.Contains(t, paths, "1/yellow_fever_1.pdf")
}

func TestProcessBatchOtherDocumentsPDFOnly(t *testing.T) {
	proc, store, _, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	result, err := proc.ProcessBatch(client, Batch{
		OtherDocuments: []UploadedFile{
			{Name: "contract.pdf", Data: []byte("%PDF-1.4\ncontract\n%%EOF\n")},
			{Name: "notes.txt", Data: []byte("plain text")},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	require.Len(t, result.Failed, 1)

	assert.Equal(t, models.DocTypeOther, result.Created[0].DocumentType)
	assert.Equal(t, "1/other_1.pdf", result.Created[0].FilePath)
	assert.Equal(t, models.DocTypeOther, result.Failed[0].Bucket)
	assert.Equal(t, "notes.txt", result.Failed[0].Filename)
	assert.False(t, store.Exists("1/other_2.pdf"))
}

func TestProcessBatchRegeneratesPortfolio(t *testing.T) {
	proc, store, _, clients := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	result, err := proc.ProcessBatch(client, Batch{
		PassportBook: []UploadedFile{{Name: "scan.pdf", Data: []byte("%PDF-1.4\n%%EOF\n")}},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Portfolio)

	// cover + header + one book page
	assert.Equal(t, 3, result.Portfolio.Pages)
	assert.True(t, store.Exists(result.Portfolio.RelativePath))

	assert.Equal(t, 1, clients.resultCalls)
	require.NotNil(t, clients.portfolioPath)
	assert.Equal(t, result.Portfolio.RelativePath, *clients.portfolioPath)
	assert.NoError(t, clients.portfolioErr)
}

func TestProcessBatchNothingCreatedSkipsPortfolio(t *testing.T) {
	proc, _, _, clients := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	result, err := proc.ProcessBatch(client, Batch{
		OtherDocuments: []UploadedFile{{Name: "notes.txt", Data: []byte("x")}},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	assert.Nil(t, result.Portfolio)
	assert.Zero(t, clients.resultCalls, "no mutation means no regeneration")
}

func TestProcessCompletePDF(t *testing.T) {
	proc, store, docs, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	src := []byte("%PDF-1.4\ncomplete package\n%%EOF\n")
	doc, err := proc.ProcessCompletePDF(client, UploadedFile{Name: "package.pdf", Data: src}, "")
	require.NoError(t, err)

	assert.Equal(t, models.DocTypeCompletePDF, doc.DocumentType)
	assert.Equal(t, "Complete PDF document for Jane Doe", doc.Description)

	filename := strings.TrimPrefix(doc.FilePath, "1/")
	assert.True(t, strings.HasPrefix(filename, "Jane_Doe_B123_complete_"), "filename %q", filename)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.Equal(t, src, readStored(t, store, doc.FilePath), "complete packages are stored verbatim")

	// summary refresh rides along
	assert.True(t, store.Exists("1/"+client.SummaryFilename()))
	assert.Len(t, docs.docs, 1)
}

func TestProcessCompletePDFKeepsCallerNotes(t *testing.T) {
	proc, _, _, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	doc, err := proc.ProcessCompletePDF(client,
		UploadedFile{Name: "package.pdf", Data: []byte("%PDF-1.4\n%%EOF\n")}, "hand-delivered copy")
	require.NoError(t, err)
	assert.Equal(t, "hand-delivered copy", doc.Description)
}

func TestProcessCompletePDFRejectsNonPDF(t *testing.T) {
	proc, _, _, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	_, err := proc.ProcessCompletePDF(client, UploadedFile{Name: "package.png", Data: []byte("x")}, "")
	assert.Error(t, err)
}

func TestProcessCompletePDFUniqueFilenames(t *testing.T) {
	proc, _, _, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	src := UploadedFile{Name: "package.pdf", Data: []byte("%PDF-1.4\n%%EOF\n")}
	first, err := proc.ProcessCompletePDF(client, src, "")
	require.NoError(t, err)
	second, err := proc.ProcessCompletePDF(client, src, "")
	require.NoError(t, err)

	assert.NotEqual(t, first.FilePath, second.FilePath, "repeated uploads must not overwrite each other")
}

func TestRegenerateSummaryCounts(t *testing.T) {
	proc, store, docs, _ := newTestProcessor(t)
	client := &models.Client{ID: 1, Name: "Jane Doe", PassportNumber: "B123"}

	require.NoError(t, docs.Create(&models.Document{ClientID: 1, DocumentType: models.DocTypePassportPhotos, FilePath: "1/passport_photo_1.pdf"}))
	require.NoError(t, docs.Create(&models.Document{ClientID: 1, DocumentType: models.DocTypePassportPhotos, FilePath: "1/passport_photo_2.pdf"}))

	result, err := proc.RegenerateSummary(client)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pages)
	assert.True(t, store.Exists(result.RelativePath))
}
