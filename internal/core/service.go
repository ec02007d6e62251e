package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JonMunkholm/salesboard/internal/catalog"
	"github.com/JonMunkholm/salesboard/internal/config"
	"github.com/JonMunkholm/salesboard/internal/ingest"
	"github.com/JonMunkholm/salesboard/internal/store"
	"github.com/google/uuid"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidUploadID = errors.New("invalid upload ID")
	ErrUnknownBranch   = errors.New("unknown branch")
	ErrUnknownChannel  = errors.New("unknown channel")
	ErrInvalidTarget   = errors.New("invalid target value")
)

// Store is the persistence used by the Service. *store.Store implements it.
type Store interface {
	Ping(ctx context.Context) error
	SaveUpload(ctx context.Context, u *store.Upload, records []ingest.Record) error
	RecordFailedUpload(ctx context.Context, u *store.Upload) error
	ListUploads(ctx context.Context, limit int) ([]store.Upload, error)
	GetUpload(ctx context.Context, id uuid.UUID) (store.Upload, error)
	RollbackUpload(ctx context.Context, id uuid.UUID) (int64, error)
	PurgeUploads(ctx context.Context, olderThan time.Time) (int64, error)
	ListRecords(ctx context.Context, f store.RecordFilter) ([]store.StoredRecord, error)
	ListTargets(ctx context.Context) ([]store.Target, error)
	SetTarget(ctx context.Context, branch string, value float64) (store.Target, error)
}

// Service runs spreadsheet ingestion and exposes the stored results.
type Service struct {
	store     Store
	catalog   catalog.Catalog
	assembler *ingest.Assembler
	limiter   *UploadLimiter

	maxFileSize   int64
	uploadTimeout time.Duration
}

// NewService wires a Service from its store, catalog and configuration.
func NewService(st Store, cat catalog.Catalog, cfg *config.Config) *Service {
	return &Service{
		store:   st,
		catalog: cat,
		assembler: ingest.NewAssembler(cat,
			ingest.WithLogger(slog.Default()),
			ingest.WithPreviewRows(cfg.Ingest.PreviewRows),
		),
		limiter:       NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		maxFileSize:   cfg.Upload.MaxFileSize,
		uploadTimeout: cfg.Upload.Timeout,
	}
}

// Catalog returns the branch and channel catalog in use.
func (s *Service) Catalog() catalog.Catalog {
	return s.catalog
}

// Health checks that the store is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// UploadLimiterStatus returns the current upload limiter state.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight ingestions finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
