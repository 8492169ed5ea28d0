package workers

import (
	"log"
	"sync"

	"github.com/ssenyonga-git/docsysbackend/intake"
	"github.com/ssenyonga-git/docsysbackend/repository"
)

type PortfolioJob struct {
	ClientID uint
}

// PortfolioProcessor runs background portfolio regeneration requests through
// a small worker pool. Jobs are deduplicated per client while queued or
// running; status transitions are recorded on the client row.
type PortfolioProcessor struct {
	JobQueue chan PortfolioJob
	Clients  repository.ClientRepositoryInterface
	Pipeline *intake.Processor
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[uint]bool
	Mutex    sync.Mutex
}

func NewPortfolioProcessor(clients repository.ClientRepositoryInterface, pipeline *intake.Processor, queueSize, numWorkers int) *PortfolioProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	proc := &PortfolioProcessor{
		JobQueue: make(chan PortfolioJob, queueSize),
		Clients:  clients,
		Pipeline: pipeline,
		StopChan: make(chan struct{}),
		Pending:  make(map[uint]bool),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	log.Printf("Started %d portfolio worker(s) with queue size %d", numWorkers, queueSize)
	return proc
}

func (pp *PortfolioProcessor) worker(id int) {
	defer pp.Wg.Done()

	log.Printf("Portfolio worker %d started", id)
	for {
		select {
		case job, ok := <-pp.JobQueue:
			if !ok {
				log.Printf("Portfolio worker %d stopping: Job queue closed", id)
				return
			}

			log.Printf("Worker %d: Received portfolio job for client %d", id, job.ClientID)
			pp.processJob(id, job)

			pp.Mutex.Lock()
			delete(pp.Pending, job.ClientID)
			pp.Mutex.Unlock()

		case <-pp.StopChan:
			log.Printf("Portfolio worker %d stopping: Stop signal received", id)
			return
		}
	}
}

func (pp *PortfolioProcessor) processJob(id int, job PortfolioJob) {
	if err := pp.Clients.MarkPortfolioProcessing(job.ClientID); err != nil {
		log.Printf("Worker %d: ERROR marking portfolio processing for client %d: %v. Skipping job.", id, job.ClientID, err)
		return
	}

	client, err := pp.Clients.GetByID(job.ClientID)
	if err != nil {
		log.Printf("Worker %d: ERROR loading client %d: %v", id, job.ClientID, err)
		if dbErr := pp.Clients.SetPortfolioResult(job.ClientID, nil, err); dbErr != nil {
			log.Printf("Worker %d: ERROR recording portfolio failure for client %d: %v", id, job.ClientID, dbErr)
		}
		return
	}

	// RegeneratePortfolio records the result status on both paths
	if _, err := pp.Pipeline.RegeneratePortfolio(client); err != nil {
		log.Printf("Worker %d: ERROR regenerating portfolio for client %d: %v", id, job.ClientID, err)
		return
	}
	log.Printf("Worker %d: Portfolio regenerated for client %d", id, job.ClientID)
}

// QueueJob queues a regeneration request unless one is already pending for
// the same client.
func (pp *PortfolioProcessor) QueueJob(job PortfolioJob) bool {
	pp.Mutex.Lock()
	if pp.Pending[job.ClientID] {
		pp.Mutex.Unlock()
		return false
	}
	pp.Pending[job.ClientID] = true
	pp.Mutex.Unlock()

	select {
	case pp.JobQueue <- job:
		log.Printf("Queued portfolio regeneration for client %d", job.ClientID)
		return true
	default:
		log.Printf("WARNING: Portfolio job queue full. Failed to queue regeneration for client %d", job.ClientID)
		pp.Mutex.Lock()
		delete(pp.Pending, job.ClientID)
		pp.Mutex.Unlock()
		return false
	}
}

func (pp *PortfolioProcessor) Stop() {
	log.Println("Stopping portfolio workers...")
	close(pp.StopChan)
	pp.Wg.Wait()
	log.Println("All portfolio workers stopped")
}
