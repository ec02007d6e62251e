package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/salesboard/internal/ingest"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultRecordLimit caps ListRecords when the filter sets no limit.
const DefaultRecordLimit = 500

// RecordFilter narrows ListRecords. Zero values mean "no constraint".
// From and To compare against the stored YYYY-MM-DD text, inclusive.
type RecordFilter struct {
	From     string
	To       string
	Branch   string
	Channel  string
	UploadID *uuid.UUID
	Limit    int
	Offset   int
}

// StoredRecord is a persisted record with its storage identifiers.
type StoredRecord struct {
	ID       int64     `json:"id"`
	UploadID uuid.UUID `json:"uploadId"`
	ingest.Record
}

func listRecordsQuery(f RecordFilter) (string, []any, error) {
	q := psql.Select("r.id", "r.upload_id", "r.sale_date", "r.branch", "r.channel",
		"r.sales_value", "r.orders_count", "r.target_value").
		From("sales_records r").
		Join("sales_uploads u ON u.id = r.upload_id").
		Where(sq.Eq{"u.status": string(StatusCompleted)})

	if f.From != "" {
		q = q.Where(sq.GtOrEq{"r.sale_date": f.From})
	}
	if f.To != "" {
		q = q.Where(sq.LtOrEq{"r.sale_date": f.To})
	}
	if f.Branch != "" {
		q = q.Where(sq.Eq{"r.branch": f.Branch})
	}
	if f.Channel != "" {
		q = q.Where(sq.Eq{"r.channel": f.Channel})
	}
	if f.UploadID != nil {
		q = q.Where(sq.Eq{"r.upload_id": pgUUID(*f.UploadID)})
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	q = q.OrderBy("r.sale_date", "r.id").Limit(uint64(limit))
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q.ToSql()
}

// ListRecords returns stored records of completed uploads matching f,
// ordered by date then insertion order.
func (s *Store) ListRecords(ctx context.Context, f RecordFilter) ([]StoredRecord, error) {
	query, args, err := listRecordsQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make([]StoredRecord, 0)
	for rows.Next() {
		var (
			rec StoredRecord
			id  pgtype.UUID
		)
		if err := rows.Scan(&rec.ID, &id, &rec.Date, &rec.Branch, &rec.Channel,
			&rec.SalesValue, &rec.OrdersCount, &rec.TargetValue); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.UploadID = uuid.UUID(id.Bytes)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
