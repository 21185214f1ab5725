package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"verilens/internal/domain"
	"verilens/internal/port"
)

type factCheckRepo struct {
	db *sqlx.DB
}

// NewFactCheckRepo creates a new PostgreSQL-backed FactCheckRepository.
func NewFactCheckRepo(db *sqlx.DB) port.FactCheckRepository {
	return &factCheckRepo{db: db}
}

const factCheckSearchQuery = `SELECT
	id, claim, verdict, confidence, source, source_url, explanation,
	checked_at, related_claims, created_at, updated_at
FROM fact_checks
WHERE (claim ILIKE '%' || $1 || '%' OR explanation ILIKE '%' || $1 || '%')
	AND ($2 = '' OR source_url = $2)
ORDER BY confidence DESC, checked_at DESC
LIMIT $3`

func (r *factCheckRepo) Search(ctx context.Context, text, sourceURL string, maxResults int) ([]domain.FactCheck, error) {
	checks := []domain.FactCheck{}
	if err := r.db.SelectContext(ctx, &checks, factCheckSearchQuery, text, sourceURL, maxResults); err != nil {
		return nil, fmt.Errorf("factCheckRepo.Search: %w", err)
	}
	return checks, nil
}

const factCheckBySourceQuery = `SELECT
	source,
	COUNT(*) AS checks,
	AVG(confidence) AS avg_confidence
FROM fact_checks
GROUP BY source`

const factCheckByVerdictQuery = `SELECT verdict, COUNT(*) AS checks
FROM fact_checks
GROUP BY verdict`

func (r *factCheckRepo) Stats(ctx context.Context) (*domain.FactCheckStats, error) {
	stats := &domain.FactCheckStats{
		ChecksBySource:     map[string]int{},
		ChecksByVerdict:    map[string]int{},
		ConfidenceBySource: map[string]float64{},
	}

	var bySource []struct {
		Source        string  `db:"source"`
		Checks        int     `db:"checks"`
		AvgConfidence float64 `db:"avg_confidence"`
	}
	if err := r.db.SelectContext(ctx, &bySource, factCheckBySourceQuery); err != nil {
		return nil, fmt.Errorf("factCheckRepo.Stats sources: %w", err)
	}
	for _, row := range bySource {
		stats.ChecksBySource[row.Source] = row.Checks
		stats.ConfidenceBySource[row.Source] = row.AvgConfidence
		stats.TotalFactChecks += row.Checks
	}

	var byVerdict []struct {
		Verdict string `db:"verdict"`
		Checks  int    `db:"checks"`
	}
	if err := r.db.SelectContext(ctx, &byVerdict, factCheckByVerdictQuery); err != nil {
		return nil, fmt.Errorf("factCheckRepo.Stats verdicts: %w", err)
	}
	for _, row := range byVerdict {
		stats.ChecksByVerdict[row.Verdict] = row.Checks
	}

	var lastUpdated *time.Time
	if err := r.db.GetContext(ctx, &lastUpdated,
		"SELECT MAX(updated_at) FROM fact_checks"); err != nil {
		return nil, fmt.Errorf("factCheckRepo.Stats last updated: %w", err)
	}
	if lastUpdated != nil {
		stats.LastUpdated = *lastUpdated
	}

	return stats, nil
}
