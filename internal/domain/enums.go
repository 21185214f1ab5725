package domain

// MediaKind identifies the kind of media unit extracted from a page.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindText  MediaKind = "text"
)

// AnalysisType identifies which pass produced an evidence item.
type AnalysisType string

const (
	AnalysisTypeErrorLevel      AnalysisType = "error_level"
	AnalysisTypeNoisePattern    AnalysisType = "noise_pattern"
	AnalysisTypeFaceAnalysis    AnalysisType = "face_analysis"
	AnalysisTypeDeepfake        AnalysisType = "deepfake_detection"
	AnalysisTypeReverseSearch   AnalysisType = "reverse_search"
	AnalysisTypeCaptionComment  AnalysisType = "caption_verification"
	AnalysisTypeTextCredibility AnalysisType = "text_credibility"
)

// ManipulationType classifies a detected manipulation. Only set when a unit
// is judged inauthentic.
type ManipulationType string

const (
	ManipulationContent  ManipulationType = "content_manipulation"
	ManipulationNoise    ManipulationType = "noise_inconsistency"
	ManipulationDeepfake ManipulationType = "deepfake"
	ManipulationFace     ManipulationType = "face_manipulation"
	ManipulationUnknown  ManipulationType = "unknown_manipulation"
)

// AnalysisSection names a page-level analysis section used in fusion.
type AnalysisSection string

const (
	SectionText   AnalysisSection = "text"
	SectionImages AnalysisSection = "images"
	SectionVideos AnalysisSection = "videos"
	SectionSource AnalysisSection = "source"
)

// FactCheckVerdict is the rating a fact-check source assigned to a claim.
type FactCheckVerdict string

const (
	VerdictTrue       FactCheckVerdict = "true"
	VerdictMostlyTrue FactCheckVerdict = "mostly_true"
	VerdictMixed      FactCheckVerdict = "mixed"
	VerdictFalse      FactCheckVerdict = "false"
	VerdictUnproven   FactCheckVerdict = "unproven"
)

// AllowedImageTypes maps MIME content types accepted by the image verifier.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// AllowedVideoTypes maps MIME content types accepted by the video verifier.
var AllowedVideoTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}
