package intake

import (
	"bytes"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/ssenyonga-git/docsysbackend/models"
	"github.com/ssenyonga-git/docsysbackend/pdfgen"
	"github.com/ssenyonga-git/docsysbackend/repository"
	"github.com/ssenyonga-git/docsysbackend/storage"
)

// UploadedFile is one file received from the upload ingress, fully buffered.
type UploadedFile struct {
	Name string
	Data []byte
}

// Batch carries one request's worth of bucketed uploads.
type Batch struct {
	PassportPhotos []UploadedFile
	PassportBook   []UploadedFile
	YellowFever    []UploadedFile
	OtherDocuments []UploadedFile
}

// FileFailure records one upload that could not be normalized or stored.
type FileFailure struct {
	Bucket   models.DocumentType
	Filename string
	Err      error
}

// BatchResult reports what a batch produced: the created document records,
// the contained per-file failures, and the regenerated portfolio.
type BatchResult struct {
	Created   []models.Document
	Failed    []FileFailure
	Portfolio *pdfgen.Result
}

// Processor runs the document intake pipeline: classify each upload, write
// the normalized PDF into the client folder, create the document record, and
// regenerate the consolidated portfolio after the batch.
type Processor struct {
	Store    storage.Store
	Docs     repository.DocumentRepositoryInterface
	Clients  repository.ClientRepositoryInterface
	Encoder  *pdfgen.Encoder
	Compiler *pdfgen.Compiler
}

func NewProcessor(store storage.Store, docs repository.DocumentRepositoryInterface,
	clients repository.ClientRepositoryInterface, encoder *pdfgen.Encoder, compiler *pdfgen.Compiler) *Processor {
	return &Processor{
		Store:    store,
		Docs:     docs,
		Clients:  clients,
		Encoder:  encoder,
		Compiler: compiler,
	}
}

// ProcessBatch normalizes a batch of uploads for one client. Failure to
// create the client folder aborts the whole batch; every other failure is
// contained to its file and recorded. The portfolio is regenerated after any
// successful mutation so the stored artifact never goes stale.
func (p *Processor) ProcessBatch(client *models.Client, batch Batch) (*BatchResult, error) {
	if _, err := p.Store.EnsureClientDir(client.ID); err != nil {
		return nil, fmt.Errorf("cannot create folder for client %d: %w", client.ID, err)
	}

	result := &BatchResult{}

	bucketFiles := [][]UploadedFile{batch.PassportPhotos, batch.PassportBook, batch.YellowFever}
	for bi, bucket := range Buckets {
		for i, file := range bucketFiles[bi] {
			doc, err := p.processFile(client, bucket, i+1, file)
			if err != nil {
				log.Printf("intake: failed to process %s file %q for client %d: %v", bucket.Type, file.Name, client.ID, err)
				result.Failed = append(result.Failed, FileFailure{Bucket: bucket.Type, Filename: file.Name, Err: err})
				continue
			}
			result.Created = append(result.Created, *doc)
		}
	}

	for i, file := range batch.OtherDocuments {
		doc, err := p.processOther(client, i+1, file)
		if err != nil {
			log.Printf("intake: failed to store other document %q for client %d: %v", file.Name, client.ID, err)
			result.Failed = append(result.Failed, FileFailure{Bucket: models.DocTypeOther, Filename: file.Name, Err: err})
			continue
		}
		result.Created = append(result.Created, *doc)
	}

	if len(result.Created) > 0 {
		portfolio, err := p.RegeneratePortfolio(client)
		if err != nil {
			log.Printf("intake: portfolio regeneration failed for client %d: %v", client.ID, err)
		} else {
			result.Portfolio = portfolio
		}
	}

	return result, nil
}

// processFile applies the passthrough rule for one bucketed upload: verbatim
// copy for PDFs in passthrough buckets, single-document encoding for
// everything else. One document record is created either way.
func (p *Processor) processFile(client *models.Client, bucket Bucket, index int, file UploadedFile) (*models.Document, error) {
	filename := fmt.Sprintf("%s_%d.pdf", bucket.FilePrefix, index)

	var relPath string
	var err error
	if bucket.AllowPDFPassthrough && IsPDF(file.Name) {
		relPath, err = p.Store.Save(client.ID, filename, bytes.NewReader(file.Data))
	} else {
		if !IsPDF(file.Name) && !IsRasterImage(file.Name) {
			log.Printf("intake: %q has an unrecognized extension, attempting image decode anyway", file.Name)
		}
		var buf bytes.Buffer
		title := fmt.Sprintf(bucket.TitleFormat, index)
		if encErr := p.Encoder.EncodeImage(file.Data, title, &buf); encErr != nil {
			return nil, encErr
		}
		relPath, err = p.Store.Save(client.ID, filename, &buf)
	}
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ClientID:     client.ID,
		DocumentType: bucket.Type,
		FilePath:     relPath,
	}
	if err := p.Docs.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// processOther stores an additional PDF verbatim; the bucket accepts PDFs only.
func (p *Processor) processOther(client *models.Client, index int, file UploadedFile) (*models.Document, error) {
	if !IsPDF(file.Name) {
		return nil, fmt.Errorf("other documents must be PDFs, got %q", file.Name)
	}

	filename := fmt.Sprintf("other_%d.pdf", index)
	relPath, err := p.Store.Save(client.ID, filename, bytes.NewReader(file.Data))
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ClientID:     client.ID,
		DocumentType: models.DocTypeOther,
		FilePath:     relPath,
	}
	if err := p.Docs.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ProcessCompletePDF handles the one-shot intake of a pre-compiled PDF
// package and refreshes the summary artifact afterwards.
func (p *Processor) ProcessCompletePDF(client *models.Client, file UploadedFile, notes string) (*models.Document, error) {
	if !IsPDF(file.Name) {
		return nil, fmt.Errorf("complete PDF upload must be a PDF, got %q", file.Name)
	}
	if _, err := p.Store.EnsureClientDir(client.ID); err != nil {
		return nil, fmt.Errorf("cannot create folder for client %d: %w", client.ID, err)
	}

	fileUUID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for complete PDF: %w", err)
	}
	filename := fmt.Sprintf("%s_%s_complete_%s.pdf", client.SafeName(), client.PassportNumber, fileUUID.String()[:8])

	relPath, err := p.Store.Save(client.ID, filename, bytes.NewReader(file.Data))
	if err != nil {
		return nil, err
	}

	description := notes
	if description == "" {
		description = fmt.Sprintf("Complete PDF document for %s", client.Name)
	}

	doc := &models.Document{
		ClientID:     client.ID,
		DocumentType: models.DocTypeCompletePDF,
		FilePath:     relPath,
		Description:  description,
	}
	if err := p.Docs.Create(doc); err != nil {
		return nil, err
	}

	if _, err := p.RegenerateSummary(client); err != nil {
		log.Printf("intake: summary regeneration failed for client %d: %v", client.ID, err)
	}

	return doc, nil
}

// RegeneratePortfolio recompiles the client's portfolio from its current
// document records and updates the tracked artifact status either way.
func (p *Processor) RegeneratePortfolio(client *models.Client) (*pdfgen.Result, error) {
	photos, err := p.Docs.ListByClientAndType(client.ID, models.DocTypePassportPhotos)
	if err != nil {
		return nil, err
	}
	book, err := p.Docs.ListByClientAndType(client.ID, models.DocTypePassportBook)
	if err != nil {
		return nil, err
	}
	yellowFever, err := p.Docs.ListByClientAndType(client.ID, models.DocTypeYellowFever)
	if err != nil {
		return nil, err
	}

	result, err := p.Compiler.Compile(client, photos, book, yellowFever)
	if err != nil {
		if dbErr := p.Clients.SetPortfolioResult(client.ID, nil, err); dbErr != nil {
			log.Printf("intake: failed to record portfolio error for client %d: %v", client.ID, dbErr)
		}
		return nil, err
	}

	if dbErr := p.Clients.SetPortfolioResult(client.ID, &result.RelativePath, nil); dbErr != nil {
		log.Printf("intake: failed to record portfolio result for client %d: %v", client.ID, dbErr)
	}
	return result, nil
}

// RegenerateSummary rebuilds the client's summary artifact from current
// document counts.
func (p *Processor) RegenerateSummary(client *models.Client) (*pdfgen.Result, error) {
	counts, err := p.Docs.CountsForClient(client.ID)
	if err != nil {
		return nil, err
	}
	return p.Compiler.Summarize(client, counts)
}
