package store

import (
	"context"
	"fmt"
	"time"
)

// Target is the sales target configured for one branch.
type Target struct {
	Branch    string    `json:"branch"`
	Value     float64   `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func setTargetQuery(branch string, value float64) (string, []any, error) {
	return psql.Insert("branch_targets").
		Columns("branch_name", "target_value").
		Values(branch, value).
		Suffix(`ON CONFLICT (branch_name) DO UPDATE
			SET target_value = EXCLUDED.target_value, updated_at = now()
			RETURNING updated_at`).
		ToSql()
}

// SetTarget inserts or replaces the target of a branch.
func (s *Store) SetTarget(ctx context.Context, branch string, value float64) (Target, error) {
	query, args, err := setTargetQuery(branch, value)
	if err != nil {
		return Target{}, fmt.Errorf("build upsert: %w", err)
	}

	t := Target{Branch: branch, Value: value}
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&t.UpdatedAt); err != nil {
		return Target{}, fmt.Errorf("upsert target: %w", err)
	}
	return t, nil
}

// ListTargets returns every configured target ordered by branch name.
func (s *Store) ListTargets(ctx context.Context) ([]Target, error) {
	query, args, err := psql.Select("branch_name", "target_value", "updated_at").
		From("branch_targets").
		OrderBy("branch_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	defer rows.Close()

	out := make([]Target, 0)
	for rows.Next() {
		var t Target
		if err := rows.Scan(&t.Branch, &t.Value, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targets: %w", err)
	}
	return out, nil
}
