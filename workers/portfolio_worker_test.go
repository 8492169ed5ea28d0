package workers

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ssenyonga-git/docsysbackend/intake"
	"github.com/ssenyonga-git/docsysbackend/models"
	"github.com/ssenyonga-git/docsysbackend/pdfgen"
	"github.com/ssenyonga-git/docsysbackend/storage"
)

// stubClientRepo serves one canned client per ID and records status updates.
// An optional gate blocks MarkPortfolioProcessing so tests can hold a job
// in flight.
type stubClientRepo struct {
	mu          sync.Mutex
	gate        chan struct{}
	processing  int
	resultPaths []string
}

func (s *stubClientRepo) Create(client *models.Client) error { return nil }

func (s *stubClientRepo) GetByID(id uint) (*models.Client, error) {
	return &models.Client{ID: id, Name: "Test Client", PassportNumber: "X1"}, nil
}

func (s *stubClientRepo) GetByPassport(p string) (*models.Client, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubClientRepo) Search(query string) ([]models.Client, error) { return nil, nil }
func (s *stubClientRepo) ListAll() ([]models.Client, error)           { return nil, nil }
func (s *stubClientRepo) Delete(id uint) error                        { return nil }
func (s *stubClientRepo) RequestPortfolio(clientID uint) error        { return nil }

func (s *stubClientRepo) MarkPortfolioProcessing(clientID uint) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.processing++
	s.mu.Unlock()
	return nil
}

func (s *stubClientRepo) SetPortfolioResult(clientID uint, portfolioPath *string, taskErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if portfolioPath != nil {
		s.resultPaths = append(s.resultPaths, *portfolioPath)
	}
	return nil
}

func (s *stubClientRepo) results() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.resultPaths...)
}

// emptyDocRepo answers every query with no documents.
type emptyDocRepo struct{}

func (emptyDocRepo) Create(doc *models.Document) error            { return nil }
func (emptyDocRepo) GetByID(id uint) (*models.Document, error)    { return nil, gorm.ErrRecordNotFound }
func (emptyDocRepo) ListByClient(clientID uint) ([]models.Document, error) { return nil, nil }
func (emptyDocRepo) ListByClientAndType(clientID uint, docType models.DocumentType) ([]models.Document, error) {
	return nil, nil
}
func (emptyDocRepo) CountByClientAndType(clientID uint, docType models.DocumentType) (int64, error) {
	return 0, nil
}
func (emptyDocRepo) CountsForClient(clientID uint) (map[models.DocumentType]int64, error) {
	return map[models.DocumentType]int64{}, nil
}
func (emptyDocRepo) DeleteByClient(clientID uint) error { return nil }

func newWorkerFixture(t *testing.T, clients *stubClientRepo) (*PortfolioProcessor, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	encoder := pdfgen.NewEncoder("Dubai Documents")
	compiler := pdfgen.NewCompiler(store, "Dubai Documents")
	pipeline := intake.NewProcessor(store, emptyDocRepo{}, clients, encoder, compiler)

	proc := NewPortfolioProcessor(clients, pipeline, 10, 1)
	t.Cleanup(proc.Stop)
	return proc, store
}

func TestWorkerRegeneratesPortfolio(t *testing.T) {
	clients := &stubClientRepo{}
	proc, store := newWorkerFixture(t, clients)

	require.True(t, proc.QueueJob(PortfolioJob{ClientID: 7}))

	require.Eventually(t, func() bool {
		return len(clients.results()) == 1
	}, 5*time.Second, 10*time.Millisecond, "worker must record a portfolio result")

	relPath := clients.results()[0]
	assert.Equal(t, "7/Test_Client_Complete_Documents.pdf", relPath)
	assert.True(t, store.Exists(relPath))
}

func TestQueueJobDeduplicates(t *testing.T) {
	clients := &stubClientRepo{gate: make(chan struct{})}
	proc, _ := newWorkerFixture(t, clients)

	assert.True(t, proc.QueueJob(PortfolioJob{ClientID: 1}))
	assert.False(t, proc.QueueJob(PortfolioJob{ClientID: 1}), "same client must not queue twice")
	assert.True(t, proc.QueueJob(PortfolioJob{ClientID: 2}), "other clients are unaffected")

	close(clients.gate)

	require.Eventually(t, func() bool {
		return len(clients.results()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	// once drained the client may be queued again
	assert.True(t, proc.QueueJob(PortfolioJob{ClientID: 1}))
}

func TestQueueJobFullQueue(t *testing.T) {
	clients := &stubClientRepo{gate: make(chan struct{})}
	defer close(clients.gate)

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	pipeline := intake.NewProcessor(store, emptyDocRepo{}, clients,
		pdfgen.NewEncoder("Dubai Documents"), pdfgen.NewCompiler(store, "Dubai Documents"))

	proc := NewPortfolioProcessor(clients, pipeline, 1, 1)
	defer proc.Stop()

	// first job occupies the worker, second fills the queue slot
	require.True(t, proc.QueueJob(PortfolioJob{ClientID: 1}))
	var queued int
	for id := uint(2); id <= 3; id++ {
		if proc.QueueJob(PortfolioJob{ClientID: id}) {
			queued++
		}
	}
	assert.LessOrEqual(t, queued, 1, "a full queue must reject further jobs")
}
