package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/tweetpanel/panel-api/internal/domain"
)

// chunkSize keeps IN-list statements under SQLite's bound-parameter limit.
const chunkSize = 500

// DemographicSource implements domain.DemographicSource against a local
// SQLite voter file. Intended for development and small deployments; the
// Postgres source is the production path.
type DemographicSource struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the SQLite database at path and verifies the connection.
func Open(path string, logger *slog.Logger) (*DemographicSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return &DemographicSource{db: db, logger: logger}, nil
}

// Close closes the underlying database handle.
func (s *DemographicSource) Close() error {
	return s.db.Close()
}

// FetchDemographics looks up panel records for a batch of author ids using
// chunked IN-list queries.
func (s *DemographicSource) FetchDemographics(ctx context.Context, authorIDs []string) ([]domain.DemographicRecord, error) {
	var records []domain.DemographicRecord
	for start := 0; start < len(authorIDs); start += chunkSize {
		end := min(start+chunkSize, len(authorIDs))
		chunk, err := s.fetchChunk(ctx, authorIDs[start:end])
		if err != nil {
			return nil, err
		}
		records = append(records, chunk...)
	}
	s.logger.Debug("demographic lookup complete", "requested", len(authorIDs), "matched", len(records))
	return records, nil
}

func (s *DemographicSource) fetchChunk(ctx context.Context, ids []string) ([]domain.DemographicRecord, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`
		SELECT tw_profile_id, state, age, gender, race
		FROM voters
		WHERE tw_profile_id IN (%s)`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	return records, nil
}
