package core

import "time"

// MediaReference is an opaque external identifier supplied by the caller.
// It exists only for the duration of one generation request.
type MediaReference struct {
	URL string `json:"url"` // Link to an external media item (YouTube, Spotify, ...)
}

// ResolvedMetadata is the normalized result of a successful provider lookup.
// A nil *ResolvedMetadata is the expected outcome for unsupported URLs and
// lookup failures, distinct from an error.
type ResolvedMetadata struct {
	Title       string `json:"title"`                 // Title reported by the provider
	Author      string `json:"author"`                // Author/channel/artist name
	Provider    string `json:"provider"`              // Provider that resolved the URL (e.g. "YouTube")
	Description string `json:"description,omitempty"` // Optional description or prompt text
}

// GroundingSource is a citation record the model attached to substantiate
// claims made using a search capability. Sources are keyed by URI for
// deduplication.
type GroundingSource struct {
	URI   string `json:"uri"`   // Reference URI (must be non-empty to be kept)
	Title string `json:"title"` // Human-readable title, placeholder if missing
}

// TokenUsage carries informational token counters from a model call.
// Never used for control flow.
type TokenUsage struct {
	PromptTokens   int32 `json:"prompt_tokens"`
	ResponseTokens int32 `json:"response_tokens"`
	TotalTokens    int32 `json:"total_tokens"`
}

// SongSelection is one concrete generation candidate: a complete set of
// parameters for the downstream generative-music service.
type SongSelection struct {
	Title        string `json:"title"`        // Song title
	Style        string `json:"style"`        // Comma-separated style/genre tags
	Instrumental bool   `json:"instrumental"` // True when no lyrics should be generated
	Content      string `json:"content"`      // Lyrics or structural description
	Comment      string `json:"comment"`      // Model's rationale for this selection
}

// SongConcept is the schema-conformant payload of a first-phase generation
// call. The shape is a strict contract: exactly five title candidates, five
// style candidates, and two fully populated selections.
type SongConcept struct {
	Analysis             string        `json:"analysis"`             // Model's analysis of the input media/theme
	TitleCandidates      []string      `json:"titleCandidates"`      // Exactly 5 title options
	StyleCandidates      []string      `json:"styleCandidates"`      // Exactly 5 style-tag options
	BestSelection        SongSelection `json:"bestSelection"`        // Recommended combination
	AlternativeSelection SongSelection `json:"alternativeSelection"` // Deliberately different approach
}

// GenerationResult is the parsed outcome of one generation request. Created
// once per successful call and immutable thereafter; owned by the caller for
// the remainder of the session.
type GenerationResult struct {
	ID            string            `json:"id"`             // Unique identifier for this result
	Concept       SongConcept       `json:"concept"`        // Schema-conformant model output
	Sources       []GroundingSource `json:"sources"`        // Deduplicated citation records
	Usage         *TokenUsage       `json:"usage,omitempty"`
	ModelUsed     string            `json:"model_used"`     // Model that produced the result
	DateGenerated time.Time         `json:"date_generated"` // When the result was produced
}

// RefinementResult is the outcome of a second-phase refinement call for a
// title the user already chose. Both selections carry exactly that title.
type RefinementResult struct {
	Best        SongSelection `json:"bestSelection"`
	Alternative SongSelection `json:"alternativeSelection"`
	Usage       *TokenUsage   `json:"usage,omitempty"`
}

// SeparationStatus enumerates the states of an audio-separation job on the
// external analysis backend.
type SeparationStatus string

const (
	SeparationQueued     SeparationStatus = "queued"
	SeparationProcessing SeparationStatus = "processing"
	SeparationCompleted  SeparationStatus = "completed"
	SeparationFailed     SeparationStatus = "failed"
)

// SeparationJob mirrors the external backend's job-polling contract:
// {status, progress, result|error}.
type SeparationJob struct {
	ID       string            `json:"id"`
	Status   SeparationStatus  `json:"status"`
	Progress int               `json:"progress"`         // 0-100
	Result   map[string]string `json:"result,omitempty"` // Stem name -> file URL
	Error    string            `json:"error,omitempty"`
}
