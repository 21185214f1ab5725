package port

import "verilens/internal/domain"

// EvidenceCache maps an evidence key to a previously computed analysis result.
// Implementations persist across process restarts; durability is best-effort
// and a failed write must never invalidate the in-memory state.
type EvidenceCache interface {
	Get(key string) (*domain.AnalysisResult, bool)
	Put(key string, result *domain.AnalysisResult)
	Flush() error
}
