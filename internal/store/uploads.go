package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/salesboard/internal/ingest"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// UploadStatus is the lifecycle state of an upload.
type UploadStatus string

const (
	StatusCompleted  UploadStatus = "completed"
	StatusFailed     UploadStatus = "failed"
	StatusRolledBack UploadStatus = "rolled_back"
)

// Upload is one row of the upload history.
type Upload struct {
	ID           uuid.UUID    `json:"id"`
	FileName     string       `json:"fileName"`
	Status       UploadStatus `json:"status"`
	Rows         int          `json:"rows"`
	Records      int          `json:"records"`
	Skipped      int          `json:"skipped"`
	Error        string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	RolledBackAt *time.Time   `json:"rolledBackAt,omitempty"`
}

var uploadColumns = []string{
	"id", "file_name", "status", "rows_read", "records", "skipped", "error", "created_at", "rolled_back_at",
}

var recordColumns = []string{
	"upload_id", "sale_date", "branch", "channel", "sales_value", "orders_count", "target_value",
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func insertUploadQuery(u Upload) (string, []any, error) {
	return psql.Insert("sales_uploads").
		Columns("id", "file_name", "status", "rows_read", "records", "skipped", "error").
		Values(pgUUID(u.ID), u.FileName, string(u.Status), u.Rows, u.Records, u.Skipped, u.Error).
		Suffix("RETURNING created_at").
		ToSql()
}

// SaveUpload records a completed upload and its records in one transaction.
// The upload's Status is forced to completed and CreatedAt is filled in.
func (s *Store) SaveUpload(ctx context.Context, u *Upload, records []ingest.Record) error {
	u.Status = StatusCompleted
	u.Records = len(records)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := insertUploadQuery(*u)
	if err != nil {
		return fmt.Errorf("build upload insert: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&u.CreatedAt); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}

	id := pgUUID(u.ID)
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"sales_records"}, recordColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{id, r.Date, r.Branch, r.Channel, r.SalesValue, r.OrdersCount, r.TargetValue}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy records: %w", err)
	}
	if int(n) != len(records) {
		return fmt.Errorf("copy records: wrote %d of %d", n, len(records))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecordFailedUpload stores a history row for an upload that produced no records.
func (s *Store) RecordFailedUpload(ctx context.Context, u *Upload) error {
	u.Status = StatusFailed
	u.Records = 0

	query, args, err := insertUploadQuery(*u)
	if err != nil {
		return fmt.Errorf("build upload insert: %w", err)
	}
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&u.CreatedAt); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func listUploadsQuery(limit int) (string, []any, error) {
	q := psql.Select(uploadColumns...).
		From("sales_uploads").
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q.ToSql()
}

// ListUploads returns the most recent uploads first. A limit of 0 returns all.
func (s *Store) ListUploads(ctx context.Context, limit int) ([]Upload, error) {
	query, args, err := listUploadsQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	uploads := make([]Upload, 0)
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return uploads, nil
}

func getUploadQuery(id uuid.UUID) (string, []any, error) {
	return psql.Select(uploadColumns...).
		From("sales_uploads").
		Where(sq.Eq{"id": pgUUID(id)}).
		ToSql()
}

// GetUpload returns one upload by ID.
func (s *Store) GetUpload(ctx context.Context, id uuid.UUID) (Upload, error) {
	query, args, err := getUploadQuery(id)
	if err != nil {
		return Upload{}, fmt.Errorf("build query: %w", err)
	}

	u, err := scanUpload(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Upload{}, ErrUploadNotFound
	}
	if err != nil {
		return Upload{}, fmt.Errorf("get upload: %w", err)
	}
	return u, nil
}

func scanUpload(row pgx.Row) (Upload, error) {
	var (
		u          Upload
		id         pgtype.UUID
		status     string
		rolledBack pgtype.Timestamptz
	)
	if err := row.Scan(&id, &u.FileName, &status, &u.Rows, &u.Records, &u.Skipped, &u.Error, &u.CreatedAt, &rolledBack); err != nil {
		return Upload{}, err
	}
	u.ID = uuid.UUID(id.Bytes)
	u.Status = UploadStatus(status)
	if rolledBack.Valid {
		t := rolledBack.Time
		u.RolledBackAt = &t
	}
	return u, nil
}

// RollbackUpload deletes every record of a completed upload and marks it
// rolled back. It returns the number of records deleted. Failed and already
// rolled back uploads are left untouched.
func (s *Store) RollbackUpload(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Select("status").
		From("sales_uploads").
		Where(sq.Eq{"id": pgUUID(id)}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var status string
	if err := tx.QueryRow(ctx, query, args...).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUploadNotFound
		}
		return 0, fmt.Errorf("lock upload: %w", err)
	}
	if err := checkRollback(UploadStatus(status)); err != nil {
		return 0, err
	}

	query, args, err = psql.Delete("sales_records").Where(sq.Eq{"upload_id": pgUUID(id)}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}

	query, args, err = psql.Update("sales_uploads").
		Set("status", string(StatusRolledBack)).
		Set("rolled_back_at", sq.Expr("now()")).
		Where(sq.Eq{"id": pgUUID(id)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("mark rolled back: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

func purgeUploadsQuery(olderThan time.Time) (string, []any, error) {
	return psql.Delete("sales_uploads").
		Where(sq.Eq{"status": []string{string(StatusFailed), string(StatusRolledBack)}}).
		Where(sq.Lt{"created_at": olderThan}).
		ToSql()
}

// PurgeUploads deletes failed and rolled back history rows created before
// olderThan. Completed uploads are never purged.
func (s *Store) PurgeUploads(ctx context.Context, olderThan time.Time) (int64, error) {
	query, args, err := purgeUploadsQuery(olderThan)
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge uploads: %w", err)
	}
	return tag.RowsAffected(), nil
}

// checkRollback reports whether an upload in status may be rolled back.
func checkRollback(status UploadStatus) error {
	switch status {
	case StatusCompleted:
		return nil
	case StatusRolledBack:
		return ErrAlreadyRolledBack
	default:
		return fmt.Errorf("%w: status %s", ErrUploadNotCompleted, status)
	}
}
