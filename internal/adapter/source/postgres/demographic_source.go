package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/tweetpanel/panel-api/internal/domain"
)

// DemographicSource implements domain.DemographicSource against the panel's
// PostgreSQL voter file.
type DemographicSource struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDemographicSource creates a new PostgreSQL demographic source.
func NewDemographicSource(db *sql.DB, logger *slog.Logger) *DemographicSource {
	return &DemographicSource{db: db, logger: logger}
}

// FetchDemographics looks up panel records for a batch of author ids. It
// stages the ids in a temp table via the COPY protocol and inner-joins the
// voters table against it, which keeps large batches off the query planner's
// IN-list path.
func (s *DemographicSource) FetchDemographics(ctx context.Context, authorIDs []string) ([]domain.DemographicRecord, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	txn, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: false})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	_, err = txn.ExecContext(ctx, `CREATE TEMP TABLE author_lookup (id varchar(255)) ON COMMIT DROP;`)
	if err != nil {
		return nil, fmt.Errorf("create temp table: %w", err)
	}

	stmt, err := txn.Prepare(pq.CopyIn("author_lookup", "id"))
	if err != nil {
		return nil, fmt.Errorf("prepare copy: %w", err)
	}
	for _, id := range authorIDs {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			_ = stmt.Close()
			return nil, fmt.Errorf("stage author id: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return nil, fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return nil, fmt.Errorf("close copy: %w", err)
	}

	rows, err := txn.QueryContext(ctx, `
		SELECT v.tw_profile_id, v.state, v.age, v.gender, v.race
		FROM voters v
		INNER JOIN author_lookup a ON v.tw_profile_id = a.id`)
	if err != nil {
		return nil, fmt.Errorf("query voters: %w", err)
	}
	defer rows.Close()

	var records []domain.DemographicRecord
	for rows.Next() {
		var (
			rec domain.DemographicRecord
			age sql.NullInt64
		)
		if err := rows.Scan(&rec.AuthorID, &rec.State, &age, &rec.Gender, &rec.Race); err != nil {
			return nil, fmt.Errorf("scan voter row: %w", err)
		}
		if age.Valid {
			v := int(age.Int64)
			rec.Age = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read voter rows: %w", err)
	}

	if err := txn.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("demographic lookup complete", "requested", len(authorIDs), "matched", len(records))
	return records, nil
}
