package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"knowbase/internal/domain"
	"knowbase/internal/service"
	"knowbase/mocks"
)

func TestGenerationQueueWorker_ProcessesClaimedTests(t *testing.T) {
	repo := new(mocks.MockTestRepo)
	svc := new(mocks.MockTestService)

	claimed := []domain.Test{
		{ID: uuid.New(), Status: domain.TestStatusGenerating, Attempts: 1},
		{ID: uuid.New(), Status: domain.TestStatusGenerating, Attempts: 2},
	}
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return(claimed, nil).Once()
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.Test{}, nil)

	var mu sync.Mutex
	seen := make(map[uuid.UUID]bool)
	done := make(chan struct{}, len(claimed))
	svc.On("ProcessGeneration", mock.Anything, mock.AnythingOfType("*domain.Test")).Run(func(args mock.Arguments) {
		test := args.Get(1).(*domain.Test)
		mu.Lock()
		seen[test.ID] = true
		mu.Unlock()
		done <- struct{}{}
	})

	worker := service.NewGenerationQueueWorker(repo, svc, service.GenerationQueueConfig{
		PollInterval: 10 * time.Millisecond,
		Concurrency:  2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(stopped)
	}()

	for range claimed {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for generation jobs")
		}
	}
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, seen[claimed[0].ID])
	assert.True(t, seen[claimed[1].ID])
}

func TestGenerationQueueWorker_ClaimErrorKeepsPolling(t *testing.T) {
	repo := new(mocks.MockTestRepo)
	svc := new(mocks.MockTestService)

	polled := make(chan struct{}, 8)
	repo.On("ClaimQueued", mock.Anything, 1).
		Run(func(mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		}).
		Return(nil, errors.New("connection refused"))

	worker := service.NewGenerationQueueWorker(repo, svc, service.GenerationQueueConfig{PollInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-polled:
		case <-time.After(2 * time.Second):
			t.Fatal("worker stopped polling after an error")
		}
	}
	cancel()
	worker.Wait()

	svc.AssertNotCalled(t, "ProcessGeneration", mock.Anything, mock.Anything)
}
