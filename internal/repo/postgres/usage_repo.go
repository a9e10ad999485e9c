package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mohammed137/ascii-master-bot/internal/domain/enums"
	"github.com/Mohammed137/ascii-master-bot/internal/domain/model"
)

// UsageRepo persists conversion usage records. The table is append-only:
// rows are never updated or deleted, counting is scoped by a rolling window.
type UsageRepo struct {
	pool *pgxpool.Pool
}

func NewUsageRepo(pool *pgxpool.Pool) *UsageRepo {
	return &UsageRepo{pool: pool}
}

// EnsureSchema creates the usage table when it does not exist yet.
func (r *UsageRepo) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS usage_records (
	id      uuid PRIMARY KEY,
	user_id bigint NOT NULL,
	kind    text   NOT NULL,
	ts      bigint NOT NULL
);
CREATE INDEX IF NOT EXISTS usage_records_user_kind_ts_idx
	ON usage_records (user_id, kind, ts)
`)
	if err != nil {
		return fmt.Errorf("ensure usage schema: %w", err)
	}

	return nil
}

func (r *UsageRepo) Insert(ctx context.Context, record model.UsageRecord) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if record.UserID <= 0 || !record.Kind.Valid() {
		return fmt.Errorf("invalid usage record payload")
	}

	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO usage_records (id, user_id, kind, ts)
VALUES ($1, $2, $3, $4)
`, id, record.UserID, string(record.Kind), record.TS)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}

	return nil
}

// CountInWindow returns the number of records for (user, kind) with a
// timestamp strictly greater than since.
func (r *UsageRepo) CountInWindow(ctx context.Context, userID int64, kind enums.RequestKind, since time.Time) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || !kind.Valid() {
		return 0, fmt.Errorf("invalid usage lookup payload")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM usage_records
WHERE user_id = $1 AND kind = $2 AND ts > $3
`, userID, string(kind), since.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usage records: %w", err)
	}

	return count, nil
}
