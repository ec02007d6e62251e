package core

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/JonMunkholm/salesboard/internal/ingest"
	"github.com/JonMunkholm/salesboard/internal/logging"
	"github.com/JonMunkholm/salesboard/internal/store"
	"github.com/google/uuid"
)

// RecordQuery is the caller-facing record filter. Branch and channel may be
// any spelling the catalog matcher accepts; dates may use any format the
// ingestion accepts.
type RecordQuery struct {
	From     string
	To       string
	Branch   string
	Channel  string
	UploadID string
	Limit    int
	Offset   int
}

// Records lists stored records of completed uploads.
func (s *Service) Records(ctx context.Context, q RecordQuery) ([]store.StoredRecord, error) {
	f := store.RecordFilter{Limit: q.Limit, Offset: q.Offset}

	if q.From != "" {
		f.From = ingest.NormalizeDate(ingest.TextCell(q.From))
	}
	if q.To != "" {
		f.To = ingest.NormalizeDate(ingest.TextCell(q.To))
	}
	if q.Branch != "" {
		m, ok := s.assembler.Branches().Match(q.Branch)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBranch, q.Branch)
		}
		f.Branch = m.Member
	}
	if q.Channel != "" {
		m, ok := s.assembler.Channels().Match(q.Channel)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, q.Channel)
		}
		f.Channel = m.Member
	}
	if q.UploadID != "" {
		id, err := uuid.Parse(strings.TrimSpace(q.UploadID))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidUploadID, err)
		}
		f.UploadID = &id
	}

	return s.store.ListRecords(ctx, f)
}

// Uploads lists the upload history, newest first.
func (s *Service) Uploads(ctx context.Context, limit int) ([]store.Upload, error) {
	return s.store.ListUploads(ctx, limit)
}

// GetUpload returns one upload history entry.
func (s *Service) GetUpload(ctx context.Context, uploadID string) (store.Upload, error) {
	id, err := uuid.Parse(strings.TrimSpace(uploadID))
	if err != nil {
		return store.Upload{}, fmt.Errorf("%w: %v", ErrInvalidUploadID, err)
	}
	return s.store.GetUpload(ctx, id)
}

// RollbackResult reports the outcome of a rollback.
type RollbackResult struct {
	UploadID    string `json:"uploadId"`
	RowsDeleted int64  `json:"rowsDeleted"`
}

// RollbackUpload deletes all records that were stored by one upload.
func (s *Service) RollbackUpload(ctx context.Context, uploadID string) (RollbackResult, error) {
	result := RollbackResult{UploadID: uploadID}

	id, err := uuid.Parse(strings.TrimSpace(uploadID))
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidUploadID, err)
	}

	n, err := s.store.RollbackUpload(ctx, id)
	if err != nil {
		return result, fmt.Errorf("rollback %s: %w", id, err)
	}
	result.RowsDeleted = n

	logging.FromContext(ctx).Info("upload rolled back", "upload_id", id.String(), "rows_deleted", n)
	return result, nil
}

// BranchTarget is a catalog branch with its configured target, if any.
type BranchTarget struct {
	Branch    string     `json:"branch"`
	Label     string     `json:"label,omitempty"`
	Value     float64    `json:"value"`
	Set       bool       `json:"set"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Targets returns one entry per catalog branch in catalog order. Branches
// without a stored target have Set false and Value 0.
func (s *Service) Targets(ctx context.Context) ([]BranchTarget, error) {
	stored, err := s.store.ListTargets(ctx)
	if err != nil {
		return nil, err
	}

	byBranch := make(map[string]store.Target, len(stored))
	for _, t := range stored {
		byBranch[t.Branch] = t
	}

	out := make([]BranchTarget, len(s.catalog.Branches))
	for i, b := range s.catalog.Branches {
		out[i] = BranchTarget{Branch: b.Name, Label: b.Label}
		if t, ok := byBranch[b.Name]; ok {
			updated := t.UpdatedAt
			out[i].Value = t.Value
			out[i].Set = true
			out[i].UpdatedAt = &updated
		}
	}
	return out, nil
}

// SetTarget stores a target for the branch that branch resolves to through
// the catalog matcher.
func (s *Service) SetTarget(ctx context.Context, branch string, value float64) (store.Target, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return store.Target{}, fmt.Errorf("%w: %v", ErrInvalidTarget, value)
	}

	m, ok := s.assembler.Branches().Match(branch)
	if !ok {
		return store.Target{}, fmt.Errorf("%w: %q", ErrUnknownBranch, branch)
	}

	t, err := s.store.SetTarget(ctx, m.Member, value)
	if err != nil {
		return store.Target{}, err
	}
	logging.FromContext(ctx).Info("target updated", "branch", t.Branch, "value", t.Value, "match", m.Tier.String())
	return t, nil
}
