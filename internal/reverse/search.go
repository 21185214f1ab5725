package reverse

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"strings"

	"golang.org/x/time/rate"

	"verilens/internal/domain"
	"verilens/internal/port"
)

// Searcher queries each configured reverse-search backend independently.
// A backend's failure produces an error entry for that engine only and never
// aborts the others.
type Searcher struct {
	engines  []port.SearchEngine
	limiters map[string]*rate.Limiter
}

// NewSearcher creates a Searcher over the given engines. Each engine gets its
// own rate limiter so one slow backend cannot starve the others' budgets.
func NewSearcher(ratePerSecond float64, engines ...port.SearchEngine) *Searcher {
	limiters := make(map[string]*rate.Limiter, len(engines))
	for _, e := range engines {
		limiters[e.Name()] = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return &Searcher{engines: engines, limiters: limiters}
}

// Search runs every engine against imageBytes. The returned slice has one
// entry per engine, each carrying either results or an error string.
func (s *Searcher) Search(ctx context.Context, imageBytes []byte) []domain.EngineResult {
	results := make([]domain.EngineResult, 0, len(s.engines))

	for _, engine := range s.engines {
		name := engine.Name()

		if limiter, ok := s.limiters[name]; ok {
			if err := limiter.Wait(ctx); err != nil {
				results = append(results, domain.EngineResult{Engine: name, Error: err.Error()})
				continue
			}
		}

		matches, err := engine.Search(ctx, imageBytes)
		if err != nil {
			log.Printf("reverseSearch: engine %s failed: %v", name, err)
			results = append(results, domain.EngineResult{Engine: name, Error: err.Error()})
			continue
		}
		results = append(results, domain.EngineResult{Engine: name, Results: matches})
	}

	return results
}

// AverageHash computes an 8x8 average-hash fingerprint of the image for
// deduplicating repeat lookups of visually identical bytes. Returns "" when
// the bytes do not decode.
func AverageHash(imageBytes []byte) string {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return ""
	}

	const side = 8
	bounds := img.Bounds()
	cellW := bounds.Dx() / side
	cellH := bounds.Dy() / side
	if cellW == 0 || cellH == 0 {
		return ""
	}

	// Downsample to an 8x8 luminance grid.
	var pixels [side * side]float64
	var total float64
	for gy := 0; gy < side; gy++ {
		for gx := 0; gx < side; gx++ {
			x := bounds.Min.X + gx*cellW + cellW/2
			y := bounds.Min.Y + gy*cellH + cellH/2
			r, g, b, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			pixels[gy*side+gx] = lum
			total += lum
		}
	}
	avg := total / float64(side*side)

	var bits strings.Builder
	for _, p := range pixels {
		if p > avg {
			bits.WriteByte('1')
		} else {
			bits.WriteByte('0')
		}
	}
	sum := md5.Sum([]byte(bits.String()))
	return hex.EncodeToString(sum[:])
}
