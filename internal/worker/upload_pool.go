package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// UploadJob is one local file destined for the object store.
type UploadJob struct {
	Path string // local filesystem path
	Name string // object name relative to the store root
}

// UploadResult pairs a job with the stored name or the error it hit.
type UploadResult struct {
	Job    UploadJob
	Stored string
	Err    error
}

// UploadFunc performs a single upload.
type UploadFunc func(ctx context.Context, job UploadJob) (string, error)

// UploadPool fans jobs out to a fixed number of goroutines.
type UploadPool struct {
	size     int
	upload   UploadFunc
	logger   *zap.Logger
	onResult func(ok bool)
}

// NewUploadPool creates a pool of size workers. onResult is optional (nil = no-op).
func NewUploadPool(size int, upload UploadFunc, logger *zap.Logger, onResult func(ok bool)) *UploadPool {
	if size < 1 {
		size = 1
	}
	if onResult == nil {
		onResult = func(bool) {}
	}
	return &UploadPool{size: size, upload: upload, logger: logger, onResult: onResult}
}

// Run uploads every job and blocks until all workers have returned.
// Results come back in job order. Jobs not started before ctx is cancelled
// are reported with ctx.Err().
func (p *UploadPool) Run(ctx context.Context, jobs []UploadJob) []UploadResult {
	results := make([]UploadResult, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.size; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			log := p.logger.With(zap.Int("worker_id", id))
			for i := range indexes {
				job := jobs[i]
				stored, err := p.upload(ctx, job)
				results[i] = UploadResult{Job: job, Stored: stored, Err: err}
				p.onResult(err == nil)
				if err != nil {
					log.Warn("upload failed", zap.String("path", job.Path), zap.Error(err))
					continue
				}
				log.Debug("uploaded", zap.String("path", job.Path), zap.String("name", stored))
			}
		}(w)
	}

	next := 0
feed:
	for ; next < len(jobs); next++ {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- next:
		}
	}
	close(indexes)
	wg.Wait()

	for i := next; i < len(jobs); i++ {
		results[i] = UploadResult{Job: jobs[i], Err: ctx.Err()}
	}
	return results
}
