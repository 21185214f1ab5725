package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verilens/internal/domain"
)

func sampleResult(confidence float64) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		IsAuthentic: true,
		Confidence:  confidence,
		Evidence: []domain.EvidenceItem{
			{AnalysisType: domain.AnalysisTypeErrorLevel, IsAuthentic: true, Confidence: confidence},
		},
	}
}

func TestFileCache_PutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := NewFileCache(path)

	c.Put("a", sampleResult(0.9))

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 0.9, got.Confidence)
	assert.True(t, got.IsAuthentic)
}

func TestFileCache_MissingFileStartsEmpty(t *testing.T) {
	c := NewFileCache(filepath.Join(t.TempDir(), "nope", "cache.json"))
	assert.Equal(t, 0, c.Len())

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestFileCache_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := NewFileCache(path)
	assert.Equal(t, 0, c.Len())
}

func TestFileCache_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	first := NewFileCache(path)
	first.Put("persist-me", sampleResult(0.7))

	second := NewFileCache(path)
	got, ok := second.Get("persist-me")
	require.True(t, ok)
	assert.Equal(t, 0.7, got.Confidence)
}

func TestFileCache_PutOverwrites(t *testing.T) {
	c := NewFileCache(filepath.Join(t.TempDir(), "cache.json"))

	c.Put("k", sampleResult(0.2))
	c.Put("k", sampleResult(0.8))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 0.8, got.Confidence)
	assert.Equal(t, 1, c.Len())
}

func TestKey_CaptionChangesKey(t *testing.T) {
	withCaption := Key("https://example.com/a.jpg", "a dog")
	without := Key("https://example.com/a.jpg", "")
	otherCaption := Key("https://example.com/a.jpg", "a cat")

	assert.NotEqual(t, withCaption, without)
	assert.NotEqual(t, withCaption, otherCaption)
	assert.Equal(t, "https://example.com/a.jpg", without)
}

func TestContentKey_DeterministicAndDistinct(t *testing.T) {
	a := ContentKey([]byte("image-bytes"))
	b := ContentKey([]byte("image-bytes"))
	c := ContentKey([]byte("other-bytes"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "sha256:")
}
