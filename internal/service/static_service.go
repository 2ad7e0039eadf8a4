package service

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/runnerkit/hello-service/internal/worker"
)

// ObjectSaver is the slice of storage.S3Store used to publish assets.
type ObjectSaver interface {
	Save(ctx context.Context, name string, body io.ReadSeeker, contentType string) (string, error)
}

// CollectReport summarises one collectstatic run.
type CollectReport struct {
	Uploaded int
	Failed   int
	Errors   []error
}

// StaticService publishes a local asset directory to the static store.
type StaticService struct {
	store   ObjectSaver
	workers int
	logger  *zap.Logger
	onFile  func(ok bool)
}

func NewStaticService(store ObjectSaver, workers int, logger *zap.Logger, onFile func(ok bool)) *StaticService {
	return &StaticService{store: store, workers: workers, logger: logger, onFile: onFile}
}

// Collect uploads every regular file below dir, keeping the relative path
// as the object name. Hidden files and directories are skipped.
func (s *StaticService) Collect(ctx context.Context, dir string) (CollectReport, error) {
	jobs, err := scanAssets(dir)
	if err != nil {
		return CollectReport{}, err
	}

	pool := worker.NewUploadPool(s.workers, s.uploadFile, s.logger, s.onFile)
	var report CollectReport
	for _, r := range pool.Run(ctx, jobs) {
		if r.Err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Errorf("%s: %w", r.Job.Name, r.Err))
			continue
		}
		report.Uploaded++
	}

	s.logger.Info("static files collected",
		zap.String("dir", dir),
		zap.Int("uploaded", report.Uploaded),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *StaticService) uploadFile(ctx context.Context, job worker.UploadJob) (string, error) {
	f, err := os.Open(job.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return s.store.Save(ctx, job.Name, f, mime.TypeByExtension(path.Ext(job.Name)))
}

func scanAssets(dir string) ([]worker.UploadJob, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat static dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static dir %s is not a directory", dir)
	}

	var jobs []worker.UploadJob
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && d.Name()[0] == '.' {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		jobs = append(jobs, worker.UploadJob{Path: p, Name: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk static dir: %w", err)
	}
	return jobs, nil
}
