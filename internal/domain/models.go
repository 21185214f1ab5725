package domain

import (
	"encoding/json"
	"time"
)

// EvidenceItem is a single analysis pass result for one media unit.
// Immutable once produced.
type EvidenceItem struct {
	AnalysisType AnalysisType           `json:"analysis_type"`
	IsAuthentic  bool                   `json:"is_authentic"`
	Confidence   float64                `json:"confidence"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// MediaUnit is a candidate media or text unit extracted during page parsing.
// Consumed exactly once by its analyzer; only derived evidence is retained.
type MediaUnit struct {
	Kind    MediaKind `json:"kind"`
	Locator string    `json:"locator"`
	Caption string    `json:"caption,omitempty"`
}

// AnalysisResult is the terminal artifact produced per media unit and the
// value cached under its evidence key.
type AnalysisResult struct {
	IsAuthentic      bool                   `json:"is_authentic"`
	Confidence       float64                `json:"confidence"`
	ManipulationType *ManipulationType      `json:"manipulation_type,omitempty"`
	Evidence         []EvidenceItem         `json:"evidence"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// CacheEntry wraps an AnalysisResult with its key and write time for the
// durable cache file.
type CacheEntry struct {
	Key       string         `json:"key"`
	Result    AnalysisResult `json:"result"`
	WrittenAt time.Time      `json:"written_at"`
}

// SectionResult carries one page-level section's contribution to fusion.
type SectionResult struct {
	Section    AnalysisSection `json:"section"`
	Score      float64         `json:"score"`
	Confidence float64         `json:"confidence"`
}

// PageAnalysis is the top-level output of analyzing a URL.
type PageAnalysis struct {
	TruthScore float64                `json:"truth_score"`
	Confidence float64                `json:"confidence"`
	Analysis   map[string]interface{} `json:"analysis"`
	Warnings   []string               `json:"warnings"`
	Error      string                 `json:"error,omitempty"`
}

// Match is a single corroborating hit from a reverse-search engine.
type Match struct {
	URL   string  `json:"url"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// EngineResult is the outcome of querying one reverse-search backend.
// Exactly one of Results or Error is populated.
type EngineResult struct {
	Engine  string  `json:"engine"`
	Results []Match `json:"results,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// FaceAttributes is one detected face's attribute tuple in a video frame.
type FaceAttributes struct {
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Ethnicity string `json:"ethnicity"`
	Emotion   string `json:"emotion"`
}

// VideoMetadata holds global properties of a decoded video stream.
type VideoMetadata struct {
	FPS        float64 `json:"fps"`
	FrameCount int     `json:"frame_count"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Duration   float64 `json:"duration"`
}

// FactCheck is a prior fact-check claim stored in the relational store.
type FactCheck struct {
	ID            int64            `db:"id" json:"id"`
	Claim         string           `db:"claim" json:"claim"`
	Verdict       FactCheckVerdict `db:"verdict" json:"verdict"`
	Confidence    float64          `db:"confidence" json:"confidence"`
	Source        string           `db:"source" json:"source"`
	SourceURL     string           `db:"source_url" json:"source_url"`
	Explanation   string           `db:"explanation" json:"explanation"`
	CheckedAt     time.Time        `db:"checked_at" json:"checked_at"`
	RelatedClaims json.RawMessage  `db:"related_claims" json:"related_claims,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// FactCheckStats holds aggregate counts over the fact-check store.
type FactCheckStats struct {
	TotalFactChecks    int                `json:"total_fact_checks"`
	ChecksBySource     map[string]int     `json:"checks_by_source"`
	ChecksByVerdict    map[string]int     `json:"checks_by_verdict"`
	ConfidenceBySource map[string]float64 `json:"confidence_by_source"`
	LastUpdated        time.Time          `json:"last_updated"`
}
