package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/salesboard/internal/ingest"
	"github.com/JonMunkholm/salesboard/internal/logging"
	"github.com/JonMunkholm/salesboard/internal/sheet"
	"github.com/JonMunkholm/salesboard/internal/store"
	"github.com/google/uuid"
)

// UploadResult summarizes one ingestion. For a dry run UploadID is empty
// and nothing was stored.
type UploadResult struct {
	UploadID    string                    `json:"uploadId,omitempty"`
	FileName    string                    `json:"fileName"`
	Rows        int                       `json:"rows"`
	Inserted    int                       `json:"inserted"`
	Skipped     int                       `json:"skipped"`
	SkipReasons map[ingest.SkipReason]int `json:"skipReasons,omitempty"`
	Columns     ingest.FieldMap           `json:"columns"`
	Preview     []ingest.Record           `json:"preview"`
	Duration    time.Duration             `json:"duration"`
}

// PreviewLimit is the number of records echoed back in an UploadResult.
const PreviewLimit = 20

// Upload ingests a spreadsheet and stores its records as one upload.
//
// Files that fail to decode or validate are recorded in the upload history
// with status failed and the error is returned; no records are stored.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (*UploadResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	id := uuid.New()
	logger := logging.WithFields(ctx, "upload_id", id.String(), "file", fileName)

	res, fm, err := s.ingest(ctx, fileName, r)
	if err != nil {
		if errors.Is(err, ErrNoFile) || errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrEmptyFile) {
			return nil, err
		}
		failed := &store.Upload{ID: id, FileName: fileName, Error: err.Error()}
		if rerr := s.recordFailure(ctx, failed); rerr != nil {
			logger.Warn("failed to record upload failure", "error", rerr)
		}
		logger.Warn("upload rejected", "error", err)
		return nil, err
	}

	u := &store.Upload{
		ID:       id,
		FileName: fileName,
		Rows:     res.Rows,
		Skipped:  res.Skipped,
	}
	if err := s.store.SaveUpload(ctx, u, res.Records); err != nil {
		logger.Error("failed to save upload", "error", err)
		return nil, fmt.Errorf("save upload: %w", err)
	}

	result := newUploadResult(fileName, res, fm, start)
	result.UploadID = id.String()
	result.Inserted = res.Count()

	logger.Info("upload completed",
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// historyWriteTimeout bounds the failed-upload write, which runs even when
// the upload's own context is done.
const historyWriteTimeout = 5 * time.Second

func (s *Service) recordFailure(ctx context.Context, u *store.Upload) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()
	return s.store.RecordFailedUpload(ctx, u)
}

// Preview runs ingestion without storing anything. The returned result has
// no UploadID and Inserted counts the records that would be stored.
func (s *Service) Preview(ctx context.Context, fileName string, r io.Reader) (*UploadResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, fm, err := s.ingest(ctx, fileName, r)
	if err != nil {
		return nil, err
	}

	result := newUploadResult(fileName, res, fm, start)
	result.Inserted = res.Count()
	return result, nil
}

// ingest reads, decodes and validates one file.
func (s *Service) ingest(ctx context.Context, fileName string, r io.Reader) (*ingest.Result, ingest.FieldMap, error) {
	if r == nil || fileName == "" {
		return nil, nil, ErrNoFile
	}

	data, err := s.readAll(r)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sh, err := sheet.Read(bytes.NewReader(data), fileName)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	logger := logging.WithFields(ctx, "file", fileName, "sheet", sh.Name)
	return s.assembler.With(logger).Ingest(sh)
}

func (s *Service) readAll(r io.Reader) ([]byte, error) {
	if s.maxFileSize > 0 {
		r = io.LimitReader(r, s.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxFileSize)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.uploadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.uploadTimeout)
}

func newUploadResult(fileName string, res *ingest.Result, fm ingest.FieldMap, start time.Time) *UploadResult {
	preview := res.Records
	if len(preview) > PreviewLimit {
		preview = preview[:PreviewLimit]
	}
	return &UploadResult{
		FileName:    fileName,
		Rows:        res.Rows,
		Skipped:     res.Skipped,
		SkipReasons: res.SkipReasons,
		Columns:     fm,
		Preview:     preview,
		Duration:    time.Since(start),
	}
}
