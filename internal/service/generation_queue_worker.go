package service

import (
	"context"
	"log"
	"sync"
	"time"

	"knowbase/internal/port"
)

// GenerationQueueConfig holds settings for the generation worker.
type GenerationQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
	JobTimeout   time.Duration
}

// GenerationQueueWorker claims queued tests and runs their generation.
type GenerationQueueWorker struct {
	testRepo    port.TestRepository
	testService TestService
	cfg         GenerationQueueConfig
	wg          sync.WaitGroup
}

// NewGenerationQueueWorker creates a new GenerationQueueWorker.
func NewGenerationQueueWorker(testRepo port.TestRepository, testService TestService, cfg GenerationQueueConfig) *GenerationQueueWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &GenerationQueueWorker{
		testRepo:    testRepo,
		testService: testService,
		cfg:         cfg,
	}
}

// Start polls until ctx is canceled, then waits for in-flight jobs.
func (w *GenerationQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("generationQueueWorker: started (poll=%s, concurrency=%d)", w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("generationQueueWorker: shutting down, waiting for in-flight jobs...")
			w.wg.Wait()
			log.Printf("generationQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			w.poll(ctx, sem)
		}
	}
}

func (w *GenerationQueueWorker) poll(ctx context.Context, sem chan struct{}) {
	available := cap(sem) - len(sem)
	if available <= 0 {
		return
	}

	tests, err := w.testRepo.ClaimQueued(ctx, available)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("generationQueueWorker: ClaimQueued error: %v", err)
		}
		return
	}

	for i := range tests {
		test := tests[i]
		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// Jobs outlive the poll context so shutdown lets them finish.
			jobCtx, cancel := context.WithTimeout(context.Background(), w.cfg.JobTimeout)
			defer cancel()

			log.Printf("generationQueueWorker: generating test %s (attempt %d)", test.ID, test.Attempts)
			w.testService.ProcessGeneration(jobCtx, &test)
		}()
	}
}

// Wait blocks until all dispatched jobs have finished.
func (w *GenerationQueueWorker) Wait() {
	w.wg.Wait()
}
