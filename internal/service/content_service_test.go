package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"verilens/internal/cache"
	"verilens/internal/domain"
	"verilens/internal/port"
	"verilens/mocks"
)

// fakeFetcher serves canned responses per URL and can block a URL until its
// context expires.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string][]byte
	blocking map[string]bool
	calls    map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:    map[string][]byte{},
		blocking: map[string]bool{},
		calls:    map[string]int{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*port.FetchResult, error) {
	f.mu.Lock()
	f.calls[url]++
	body, ok := f.pages[url]
	blocking := f.blocking[url]
	f.mu.Unlock()

	if blocking {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, ctx.Err())
	}
	if !ok {
		return nil, fmt.Errorf("%w: no route for %s", domain.ErrFetchFailed, url)
	}
	return &port.FetchResult{StatusCode: 200, Body: body, ContentType: "application/octet-stream"}, nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type stubImageAnalyzer struct {
	mu    sync.Mutex
	calls int
}

func (s *stubImageAnalyzer) Analyze(data []byte) (*domain.AnalysisResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return &domain.AnalysisResult{
		IsAuthentic: true,
		Confidence:  0.85,
		Evidence: []domain.EvidenceItem{
			{AnalysisType: domain.AnalysisTypeErrorLevel, IsAuthentic: true, Confidence: 0.9},
			{AnalysisType: domain.AnalysisTypeNoisePattern, IsAuthentic: true, Confidence: 0.85},
		},
	}, nil
}

func (s *stubImageAnalyzer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubVideoAnalyzer struct{}

func (stubVideoAnalyzer) AnalyzeClip(ctx context.Context, data []byte, analyzeFrames bool) (*domain.AnalysisResult, error) {
	return &domain.AnalysisResult{
		IsAuthentic: true,
		Confidence:  0.8,
		Evidence: []domain.EvidenceItem{
			{AnalysisType: domain.AnalysisTypeDeepfake, IsAuthentic: true, Confidence: 0.8},
		},
	}, nil
}

func newTestCache(t *testing.T) *cache.FileCache {
	t.Helper()
	return cache.NewFileCache(filepath.Join(t.TempDir(), "cache.json"))
}

func testConfig() ContentConfig {
	return ContentConfig{MaxUnitsPerPage: 3, UnitTimeout: 100 * time.Second, Concurrency: 3}
}

func pageHTML(imgs int) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>Flood hits coastal town</title></head><body>")
	sb.WriteString("<p>Residents were evacuated overnight as waters rose.</p>")
	for i := 0; i < imgs; i++ {
		fmt.Fprintf(&sb, `<img src="/media/img-%d.jpg">`, i)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func TestAnalyzeURL_CapsImageUnits(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://example.com/story"] = []byte(pageHTML(5))
	for i := 0; i < 5; i++ {
		fetcher.pages[fmt.Sprintf("https://example.com/media/img-%d.jpg", i)] = []byte("img")
	}

	svc := NewContentService(fetcher, &stubImageAnalyzer{}, stubVideoAnalyzer{}, nil, nil, newTestCache(t), nil, testConfig())
	page := svc.AnalyzeURL(context.Background(), "https://example.com/story")

	require.Empty(t, page.Error)
	images := page.Analysis["images"].([]map[string]interface{})
	assert.Len(t, images, 3)

	fetched := 0
	for i := 0; i < 5; i++ {
		fetched += fetcher.callCount(fmt.Sprintf("https://example.com/media/img-%d.jpg", i))
	}
	assert.Equal(t, 3, fetched)
}

func TestAnalyzeURL_UnitTimeoutDropsOnlyThatUnit(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.rig3Images()

	cfg := testConfig()
	cfg.UnitTimeout = 50 * time.Millisecond

	svc := NewContentService(fetcher, &stubImageAnalyzer{}, stubVideoAnalyzer{}, nil, nil, newTestCache(t), nil, cfg)
	page := svc.AnalyzeURL(context.Background(), "https://example.com/story")

	require.Empty(t, page.Error)
	images := page.Analysis["images"].([]map[string]interface{})
	assert.Len(t, images, 2)
	require.NotEmpty(t, page.Warnings)
	assert.Contains(t, page.Warnings[0], "img-1.jpg")
	assert.Greater(t, page.TruthScore, 0.0)
}

// rig3Images sets up a 3-image page where the middle image never responds.
func (f *fakeFetcher) rig3Images() {
	f.pages["https://example.com/story"] = []byte(pageHTML(3))
	f.pages["https://example.com/media/img-0.jpg"] = []byte("img")
	f.blocking["https://example.com/media/img-1.jpg"] = true
	f.pages["https://example.com/media/img-2.jpg"] = []byte("img")
}

func TestAnalyzeURL_FetchFailureDegrades(t *testing.T) {
	fetcher := newFakeFetcher()

	svc := NewContentService(fetcher, &stubImageAnalyzer{}, stubVideoAnalyzer{}, nil, nil, newTestCache(t), nil, testConfig())
	page := svc.AnalyzeURL(context.Background(), "https://example.com/missing")

	assert.NotEmpty(t, page.Error)
	assert.Equal(t, 0.0, page.TruthScore)
}

func TestAnalyzeURL_TextAndSourceSections(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://example.com/story"] = []byte(pageHTML(0))

	model := new(mocks.MockTextModel)
	model.On("Generate", mock.Anything, mock.Anything).
		Return("The article reads as sober reporting. Confidence score: 80", nil)

	factRepo := new(mocks.MockFactCheckRepo)
	factRepo.On("Search", mock.Anything, mock.Anything, "https://example.com/story", sourceLookupLimit).
		Return([]domain.FactCheck{
			{Claim: "flood happened", Verdict: domain.VerdictTrue, Confidence: 0.9},
			{Claim: "town evacuated", Verdict: domain.VerdictMixed, Confidence: 0.7},
		}, nil)

	svc := NewContentService(fetcher, &stubImageAnalyzer{}, stubVideoAnalyzer{}, nil, model, newTestCache(t), factRepo, testConfig())
	page := svc.AnalyzeURL(context.Background(), "https://example.com/story")

	require.Empty(t, page.Error)
	assert.Contains(t, page.Analysis, "text")
	assert.Contains(t, page.Analysis, "source")

	// text 0.8 at weight 0.4, source (1.0+0.5)/2=0.75 at weight 0.1.
	expected := (0.8*0.4 + 0.75*0.1) / 0.5
	assert.InDelta(t, expected, page.TruthScore, 1e-9)

	model.AssertNumberOfCalls(t, "Generate", 1)
	factRepo.AssertExpectations(t)
}

func TestAnalyzeImage_CacheHitSkipsAllPasses(t *testing.T) {
	analyzer := &stubImageAnalyzer{}
	model := new(mocks.MockTextModel)
	model.On("Generate", mock.Anything, mock.Anything).
		Return("Plausible caption. Confidence score: 70", nil)

	svc := NewContentService(newFakeFetcher(), analyzer, stubVideoAnalyzer{}, nil, model, newTestCache(t), nil, testConfig())

	first, err := svc.AnalyzeImage(context.Background(), []byte("same-bytes"), "a dog", false)
	require.NoError(t, err)
	second, err := svc.AnalyzeImage(context.Background(), []byte("same-bytes"), "a dog", false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, analyzer.callCount())
	model.AssertNumberOfCalls(t, "Generate", 1)
}

func TestAnalyzeImage_CaptionChangesCacheKey(t *testing.T) {
	analyzer := &stubImageAnalyzer{}
	svc := NewContentService(newFakeFetcher(), analyzer, stubVideoAnalyzer{}, nil, nil, newTestCache(t), nil, testConfig())

	_, err := svc.AnalyzeImage(context.Background(), []byte("same-bytes"), "a dog", false)
	require.NoError(t, err)
	_, err = svc.AnalyzeImage(context.Background(), []byte("same-bytes"), "a cat", false)
	require.NoError(t, err)

	assert.Equal(t, 2, analyzer.callCount())
}

func TestAnalyzeImage_CaptionEvidenceAppended(t *testing.T) {
	model := new(mocks.MockTextModel)
	model.On("Generate", mock.Anything, mock.Anything).
		Return("This caption overstates the scene. Confidence score: 30", nil)

	svc := NewContentService(newFakeFetcher(), &stubImageAnalyzer{}, stubVideoAnalyzer{}, nil, model, newTestCache(t), nil, testConfig())

	result, err := svc.AnalyzeImage(context.Background(), []byte("img"), "a dramatic scene", false)
	require.NoError(t, err)

	last := result.Evidence[len(result.Evidence)-1]
	assert.Equal(t, domain.AnalysisTypeCaptionComment, last.AnalysisType)
	assert.False(t, last.IsAuthentic)
	assert.InDelta(t, 0.3, last.Confidence, 1e-9)

	// Caption commentary is advisory: the verdict stays with the forensic passes.
	assert.True(t, result.IsAuthentic)
	assert.InDelta(t, 0.85, result.Confidence, 1e-9)
	assert.Nil(t, result.ManipulationType)
}

func TestAnalyzeImage_MatchlessReverseSearchKeepsForensicVerdict(t *testing.T) {
	searcher := stubSearcher{results: []domain.EngineResult{
		{Engine: "google", Results: nil},
	}}

	svc := NewContentService(newFakeFetcher(), &stubImageAnalyzer{}, stubVideoAnalyzer{}, searcher, nil, newTestCache(t), nil, testConfig())

	result, err := svc.AnalyzeImage(context.Background(), []byte("img"), "", true)
	require.NoError(t, err)

	// The neutral 0.5 reverse-search item is recorded but must not cap the
	// forensic confidence.
	last := result.Evidence[len(result.Evidence)-1]
	assert.Equal(t, domain.AnalysisTypeReverseSearch, last.AnalysisType)
	assert.InDelta(t, 0.5, last.Confidence, 1e-9)

	assert.True(t, result.IsAuthentic)
	assert.InDelta(t, 0.85, result.Confidence, 1e-9)
	assert.Nil(t, result.ManipulationType)
}

func TestAnalyzeImage_ModelOutageIsBestEffort(t *testing.T) {
	model := new(mocks.MockTextModel)
	model.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	svc := NewContentService(newFakeFetcher(), &stubImageAnalyzer{}, stubVideoAnalyzer{}, nil, model, newTestCache(t), nil, testConfig())

	result, err := svc.AnalyzeImage(context.Background(), []byte("img"), "a dog", false)
	require.NoError(t, err)
	assert.True(t, result.IsAuthentic)
	for _, item := range result.Evidence {
		assert.NotEqual(t, domain.AnalysisTypeCaptionComment, item.AnalysisType)
	}
}

func TestAnalyzeImage_ReverseSearchEvidence(t *testing.T) {
	searcher := stubSearcher{results: []domain.EngineResult{
		{Engine: "google", Results: []domain.Match{{URL: "https://a"}, {URL: "https://b"}}},
		{Engine: "bing", Error: "missing credentials"},
	}}

	svc := NewContentService(newFakeFetcher(), &stubImageAnalyzer{}, stubVideoAnalyzer{}, searcher, nil, newTestCache(t), nil, testConfig())

	result, err := svc.AnalyzeImage(context.Background(), []byte("img"), "", true)
	require.NoError(t, err)

	last := result.Evidence[len(result.Evidence)-1]
	assert.Equal(t, domain.AnalysisTypeReverseSearch, last.AnalysisType)
	assert.True(t, last.IsAuthentic)
	assert.InDelta(t, 0.7, last.Confidence, 1e-9)
	assert.Equal(t, 2, last.Details["match_count"])
}

type stubSearcher struct {
	results []domain.EngineResult
}

func (s stubSearcher) Search(ctx context.Context, imageBytes []byte) []domain.EngineResult {
	return s.results
}

func TestExtractMediaUnits_FigcaptionBeyondImgParent(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "figcaption outside the img's wrapping div",
			html: `<figure><div><img src="/a.jpg"></div><figcaption>Crowd at the rally</figcaption></figure>`,
			want: "Crowd at the rally",
		},
		{
			name: "figcaption as a direct following sibling",
			html: `<figure><img src="/a.jpg"><figcaption>Flooded street</figcaption></figure>`,
			want: "Flooded street",
		},
		{
			name: "alt wins over a following figcaption",
			html: `<figure><img src="/a.jpg" alt="aerial view"><figcaption>Flooded street</figcaption></figure>`,
			want: "aerial view",
		},
		{
			name: "no caption anywhere",
			html: `<div><img src="/a.jpg"></div>`,
			want: "",
		},
	}

	base, err := url.Parse("https://example.com/story")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + tt.html + "</body></html>"))
			require.NoError(t, err)

			units := extractMediaUnits(doc, base, 3)
			require.Len(t, units, 1)
			assert.Equal(t, tt.want, units[0].Caption)
		})
	}
}

func TestAnalyzeVideo_CachedByContentOnly(t *testing.T) {
	svc := NewContentService(newFakeFetcher(), &stubImageAnalyzer{}, stubVideoAnalyzer{}, nil, nil, newTestCache(t), nil, testConfig())

	first, err := svc.AnalyzeVideo(context.Background(), []byte("clip"), true)
	require.NoError(t, err)
	second, err := svc.AnalyzeVideo(context.Background(), []byte("clip"), false)
	require.NoError(t, err)

	// Same bytes hit the same entry regardless of flags.
	assert.Equal(t, first, second)
}
