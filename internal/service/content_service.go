package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"verilens/internal/cache"
	"verilens/internal/domain"
	"verilens/internal/fusion"
	"verilens/internal/port"
	"verilens/internal/reverse"
)

const (
	// Upper bound on the page text excerpt sent to the text model.
	textExcerptLimit = 2000

	// Number of fact-check rows pulled when corroborating a page.
	sourceLookupLimit = 5
)

// ImageAnalyzer runs forensic passes over decoded image bytes.
type ImageAnalyzer interface {
	Analyze(data []byte) (*domain.AnalysisResult, error)
}

// VideoAnalyzer runs frame and deepfake passes over raw video bytes.
type VideoAnalyzer interface {
	AnalyzeClip(ctx context.Context, data []byte, analyzeFrames bool) (*domain.AnalysisResult, error)
}

// ReverseSearcher queries reverse-image-search engines.
type ReverseSearcher interface {
	Search(ctx context.Context, imageBytes []byte) []domain.EngineResult
}

// ContentConfig holds orchestrator settings for page analysis.
type ContentConfig struct {
	MaxUnitsPerPage int
	UnitTimeout     time.Duration
	Concurrency     int
}

// ContentService orchestrates whole-page and single-media authenticity analysis.
type ContentService interface {
	AnalyzeURL(ctx context.Context, pageURL string) *domain.PageAnalysis
	AnalyzeImage(ctx context.Context, data []byte, caption string, reverseSearch bool) (*domain.AnalysisResult, error)
	AnalyzeVideo(ctx context.Context, data []byte, analyzeFrames bool) (*domain.AnalysisResult, error)
}

type contentService struct {
	fetcher   port.PageFetcher
	images    ImageAnalyzer
	videos    VideoAnalyzer
	searcher  ReverseSearcher
	model     port.TextModel
	evidences port.EvidenceCache
	factRepo  port.FactCheckRepository
	fuser     *fusion.Fuser
	cfg       ContentConfig
}

// NewContentService creates a new ContentService implementation. searcher,
// model and factRepo may be nil; the matching passes are then skipped.
func NewContentService(
	fetcher port.PageFetcher,
	images ImageAnalyzer,
	videos VideoAnalyzer,
	searcher ReverseSearcher,
	model port.TextModel,
	evidences port.EvidenceCache,
	factRepo port.FactCheckRepository,
	cfg ContentConfig,
) ContentService {
	if cfg.MaxUnitsPerPage <= 0 {
		cfg.MaxUnitsPerPage = 3
	}
	if cfg.UnitTimeout <= 0 {
		cfg.UnitTimeout = 100 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	return &contentService{
		fetcher:   fetcher,
		images:    images,
		videos:    videos,
		searcher:  searcher,
		model:     model,
		evidences: evidences,
		factRepo:  factRepo,
		fuser:     fusion.NewFuser(),
		cfg:       cfg,
	}
}

// AnalyzeURL fetches a page, extracts its media units and text, analyzes each
// concurrently, and fuses the surviving sections into a page truth score. It
// never returns an error: top-level failures yield a degraded result with the
// failure recorded in Error.
func (s *contentService) AnalyzeURL(ctx context.Context, pageURL string) *domain.PageAnalysis {
	fetched, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		log.Printf("contentService.AnalyzeURL: fetch %s failed: %v", pageURL, err)
		return &domain.PageAnalysis{Error: err.Error(), Analysis: map[string]interface{}{}}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(fetched.Body))
	if err != nil {
		log.Printf("contentService.AnalyzeURL: parse %s failed: %v", pageURL, err)
		return &domain.PageAnalysis{Error: fmt.Sprintf("parsing page: %v", err), Analysis: map[string]interface{}{}}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return &domain.PageAnalysis{Error: fmt.Sprintf("invalid url: %v", err), Analysis: map[string]interface{}{}}
	}

	units := extractMediaUnits(doc, base, s.cfg.MaxUnitsPerPage)
	excerpt := extractTextExcerpt(doc, textExcerptLimit)

	page := &domain.PageAnalysis{
		Analysis: map[string]interface{}{},
		Warnings: []string{},
	}
	var sections []domain.SectionResult

	if section, ok := s.analyzeText(ctx, excerpt, page); ok {
		sections = append(sections, section)
	}
	if section, ok := s.analyzeSource(ctx, excerpt, pageURL, page); ok {
		sections = append(sections, section)
	}
	sections = append(sections, s.analyzeUnits(ctx, units, page)...)

	score, confidence := s.fuser.FusePage(sections)
	page.TruthScore = score
	page.Confidence = confidence
	return page
}

// analyzeUnits fans out one goroutine per media unit under a semaphore, each
// with its own timeout. A failed unit contributes a warning, not an error.
func (s *contentService) analyzeUnits(ctx context.Context, units []domain.MediaUnit, page *domain.PageAnalysis) []domain.SectionResult {
	type outcome struct {
		unit   domain.MediaUnit
		result *domain.AnalysisResult
		err    error
	}

	outcomes := make([]outcome, len(units))
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup

	for i := range units {
		unit := units[i]
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			unitCtx, cancel := context.WithTimeout(ctx, s.cfg.UnitTimeout)
			defer cancel()

			result, err := s.analyzeUnit(unitCtx, unit)
			outcomes[i] = outcome{unit: unit, result: result, err: err}
		}(i)
	}
	wg.Wait()

	var imageEntries, videoEntries []map[string]interface{}
	var imageResults, videoResults []*domain.AnalysisResult

	for _, o := range outcomes {
		if o.err != nil {
			log.Printf("contentService.analyzeUnits: %s %s failed: %v", o.unit.Kind, o.unit.Locator, o.err)
			page.Warnings = append(page.Warnings, fmt.Sprintf("%s %s: %v", o.unit.Kind, o.unit.Locator, o.err))
			continue
		}
		entry := map[string]interface{}{
			"url":    o.unit.Locator,
			"result": o.result,
		}
		switch o.unit.Kind {
		case domain.MediaKindVideo:
			videoEntries = append(videoEntries, entry)
			videoResults = append(videoResults, o.result)
		default:
			entry["caption"] = o.unit.Caption
			imageEntries = append(imageEntries, entry)
			imageResults = append(imageResults, o.result)
		}
	}

	var sections []domain.SectionResult
	if len(imageResults) > 0 {
		page.Analysis["images"] = imageEntries
		sections = append(sections, sectionFromResults(domain.SectionImages, imageResults))
	}
	if len(videoResults) > 0 {
		page.Analysis["videos"] = videoEntries
		sections = append(sections, sectionFromResults(domain.SectionVideos, videoResults))
	}
	return sections
}

func (s *contentService) analyzeUnit(ctx context.Context, unit domain.MediaUnit) (*domain.AnalysisResult, error) {
	fetched, err := s.fetcher.Fetch(ctx, unit.Locator)
	if err != nil {
		return nil, err
	}
	if unit.Kind == domain.MediaKindVideo {
		return s.AnalyzeVideo(ctx, fetched.Body, true)
	}
	return s.AnalyzeImage(ctx, fetched.Body, unit.Caption, true)
}

// analyzeText asks the text model for a credibility read of the page excerpt.
func (s *contentService) analyzeText(ctx context.Context, excerpt string, page *domain.PageAnalysis) (domain.SectionResult, bool) {
	if s.model == nil || excerpt == "" {
		return domain.SectionResult{}, false
	}

	prompt := fmt.Sprintf(
		"Assess the credibility of the following article text. Consider factual consistency, "+
			"sensationalism, and sourcing. End your assessment with a line of the form "+
			"\"Confidence score: N\" where N is between 0 and 100.\n\n%s",
		excerpt,
	)
	out, err := s.model.Generate(ctx, prompt)
	if err != nil {
		log.Printf("contentService.analyzeText: model call failed: %v", err)
		page.Warnings = append(page.Warnings, fmt.Sprintf("text analysis: %v", err))
		return domain.SectionResult{}, false
	}

	score, ok := fusion.ExtractConfidence(out)
	if !ok {
		page.Warnings = append(page.Warnings, "text analysis: no confidence score in model response")
		return domain.SectionResult{}, false
	}

	page.Analysis["text"] = map[string]interface{}{
		"assessment": out,
		"score":      score,
	}
	return domain.SectionResult{Section: domain.SectionText, Score: score, Confidence: score}, true
}

// analyzeSource corroborates the page against the fact-check store.
func (s *contentService) analyzeSource(ctx context.Context, excerpt, pageURL string, page *domain.PageAnalysis) (domain.SectionResult, bool) {
	if s.factRepo == nil || excerpt == "" {
		return domain.SectionResult{}, false
	}

	query := excerpt
	if len(query) > 200 {
		query = query[:200]
	}
	checks, err := s.factRepo.Search(ctx, query, pageURL, sourceLookupLimit)
	if err != nil {
		log.Printf("contentService.analyzeSource: fact-check lookup failed: %v", err)
		page.Warnings = append(page.Warnings, fmt.Sprintf("source analysis: %v", err))
		return domain.SectionResult{}, false
	}
	if len(checks) == 0 {
		return domain.SectionResult{}, false
	}

	var scoreSum, confSum float64
	for _, fc := range checks {
		scoreSum += verdictScore(fc.Verdict)
		confSum += fc.Confidence
	}
	n := float64(len(checks))

	page.Analysis["source"] = map[string]interface{}{
		"fact_checks": checks,
		"match_count": len(checks),
	}
	return domain.SectionResult{
		Section:    domain.SectionSource,
		Score:      fusion.Clamp01(scoreSum / n),
		Confidence: fusion.Clamp01(confSum / n),
	}, true
}

// AnalyzeImage runs the cached forensic pipeline over one image: forensic
// passes, reverse search, and caption commentary.
func (s *contentService) AnalyzeImage(ctx context.Context, data []byte, caption string, reverseSearch bool) (*domain.AnalysisResult, error) {
	key := cache.Key(cache.ContentKey(data), caption)
	if cached, ok := s.evidences.Get(key); ok {
		return cached, nil
	}

	result, err := s.images.Analyze(data)
	if err != nil {
		return nil, err
	}

	// Reverse-search and caption items are appended for transparency only; the
	// unit verdict stays with the forensic passes.
	if reverseSearch && s.searcher != nil {
		result.Evidence = append(result.Evidence, s.reverseSearchEvidence(ctx, data))
	}
	if caption != "" && s.model != nil {
		if item, ok := s.captionEvidence(ctx, caption); ok {
			result.Evidence = append(result.Evidence, item)
		}
	}

	s.evidences.Put(key, result)
	return result, nil
}

// AnalyzeVideo runs the cached video pipeline over one clip. The cache key
// covers the clip bytes only.
func (s *contentService) AnalyzeVideo(ctx context.Context, data []byte, analyzeFrames bool) (*domain.AnalysisResult, error) {
	key := cache.ContentKey(data)
	if cached, ok := s.evidences.Get(key); ok {
		return cached, nil
	}

	result, err := s.videos.AnalyzeClip(ctx, data, analyzeFrames)
	if err != nil {
		return nil, err
	}

	s.evidences.Put(key, result)
	return result, nil
}

func (s *contentService) reverseSearchEvidence(ctx context.Context, data []byte) domain.EvidenceItem {
	engineResults := s.searcher.Search(ctx, data)

	matches := 0
	for _, er := range engineResults {
		matches += len(er.Results)
	}

	// Corroboration raises confidence; with no matches the pass is neutral.
	confidence := 0.5 + 0.1*float64(matches)
	if confidence > 0.9 {
		confidence = 0.9
	}
	details := map[string]interface{}{
		"engines":     engineResults,
		"match_count": matches,
	}
	if fingerprint := reverse.AverageHash(data); fingerprint != "" {
		details["fingerprint"] = fingerprint
	}
	return domain.EvidenceItem{
		AnalysisType: domain.AnalysisTypeReverseSearch,
		IsAuthentic:  true,
		Confidence:   confidence,
		Details:      details,
	}
}

func (s *contentService) captionEvidence(ctx context.Context, caption string) (domain.EvidenceItem, bool) {
	prompt := fmt.Sprintf(
		"Does this image caption make a plausible, verifiable claim? Caption: %q. "+
			"End your answer with a line of the form \"Confidence score: N\" where N is between 0 and 100.",
		caption,
	)
	out, err := s.model.Generate(ctx, prompt)
	if err != nil {
		// Caption commentary is best-effort.
		log.Printf("contentService.captionEvidence: model call failed: %v", err)
		return domain.EvidenceItem{}, false
	}

	confidence, ok := fusion.ExtractConfidence(out)
	if !ok {
		return domain.EvidenceItem{}, false
	}
	return domain.EvidenceItem{
		AnalysisType: domain.AnalysisTypeCaptionComment,
		IsAuthentic:  confidence >= 0.5,
		Confidence:   confidence,
		Details: map[string]interface{}{
			"commentary": out,
		},
	}, true
}

func sectionFromResults(section domain.AnalysisSection, results []*domain.AnalysisResult) domain.SectionResult {
	scores := make([]float64, 0, len(results))
	confidences := make([]float64, 0, len(results))
	for _, r := range results {
		if r.IsAuthentic {
			scores = append(scores, r.Confidence)
		} else {
			scores = append(scores, 1-r.Confidence)
		}
		confidences = append(confidences, r.Confidence)
	}
	score, _ := fusion.MeanScore(scores)
	confidence, _ := fusion.MeanScore(confidences)
	return domain.SectionResult{
		Section:    section,
		Score:      fusion.Clamp01(score),
		Confidence: fusion.Clamp01(confidence),
	}
}

func verdictScore(v domain.FactCheckVerdict) float64 {
	switch v {
	case domain.VerdictTrue:
		return 1.0
	case domain.VerdictMostlyTrue:
		return 0.75
	case domain.VerdictMixed:
		return 0.5
	case domain.VerdictUnproven:
		return 0.4
	case domain.VerdictFalse:
		return 0.0
	default:
		return 0.5
	}
}

// extractMediaUnits collects up to max image and video references from the
// parsed page, resolving relative locators against the page URL. Caption
// priority for images: alt, then title, then the nearest following figcaption.
func extractMediaUnits(doc *goquery.Document, base *url.URL, max int) []domain.MediaUnit {
	var units []domain.MediaUnit
	seen := map[string]bool{}

	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(units) >= max {
			return false
		}
		src, ok := sel.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return true
		}
		locator := resolveLocator(base, src)
		if locator == "" || seen[locator] {
			return true
		}
		seen[locator] = true
		units = append(units, domain.MediaUnit{
			Kind:    domain.MediaKindImage,
			Locator: locator,
			Caption: imageCaption(sel),
		})
		return true
	})

	doc.Find("video").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(units) >= 2*max {
			return false
		}
		src, ok := sel.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			src, ok = sel.Find("source").First().Attr("src")
			if !ok || strings.TrimSpace(src) == "" {
				return true
			}
		}
		locator := resolveLocator(base, src)
		if locator == "" || seen[locator] {
			return true
		}
		seen[locator] = true
		units = append(units, domain.MediaUnit{
			Kind:    domain.MediaKindVideo,
			Locator: locator,
		})
		return true
	})

	return units
}

func imageCaption(sel *goquery.Selection) string {
	if alt := strings.TrimSpace(sel.AttrOr("alt", "")); alt != "" {
		return alt
	}
	if title := strings.TrimSpace(sel.AttrOr("title", "")); title != "" {
		return title
	}
	return nextFigcaption(sel)
}

// nextFigcaption returns the text of the first figcaption after the image in
// document order, walking the following siblings at each ancestor level.
func nextFigcaption(sel *goquery.Selection) string {
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		var caption string
		cur.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			if goquery.NodeName(sib) == "figcaption" {
				caption = strings.TrimSpace(sib.Text())
				return false
			}
			if nested := sib.Find("figcaption").First(); nested.Length() > 0 {
				caption = strings.TrimSpace(nested.Text())
				return false
			}
			return true
		})
		if caption != "" {
			return caption
		}
	}
	return ""
}

func resolveLocator(base *url.URL, src string) string {
	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// extractTextExcerpt pulls the page title and paragraph text up to limit runes.
func extractTextExcerpt(doc *goquery.Document, limit int) string {
	var sb strings.Builder
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
		return sb.Len() < limit
	})

	excerpt := strings.TrimSpace(sb.String())
	runes := []rune(excerpt)
	if len(runes) > limit {
		excerpt = string(runes[:limit])
	}
	return excerpt
}
