package gen

import (
	"google.golang.org/genai"
)

// candidateCount is the exact number of title and style candidates the
// first-phase schema demands.
const candidateCount = 5

// selectionSchema describes one complete generation candidate: title, style
// tags, instrumental flag, lyrics/content, and the model's rationale.
func selectionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "Song title",
			},
			"style": {
				Type:        genai.TypeString,
				Description: "Comma-separated style tags (genre, mood, instrumentation, tempo)",
			},
			"instrumental": {
				Type:        genai.TypeBoolean,
				Description: "True when the piece has no lyrics",
			},
			"content": {
				Type:        genai.TypeString,
				Description: "Lyrics with section markers, or a structural description for instrumentals",
			},
			"comment": {
				Type:        genai.TypeString,
				Description: "Short rationale for this selection",
			},
		},
		Required: []string{"title", "style", "instrumental", "content", "comment"},
	}
}

// ConceptSchema returns the strict response schema for first-phase
// generation. Output violating it is a hard failure.
func ConceptSchema() *genai.Schema {
	exactly := int64(candidateCount)
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"analysis": {
				Type:        genai.TypeString,
				Description: "Analysis of the provided media, theme, or attachment",
			},
			"titleCandidates": {
				Type:        genai.TypeArray,
				Description: "Exactly 5 candidate song titles",
				Items:       &genai.Schema{Type: genai.TypeString},
				MinItems:    &exactly,
				MaxItems:    &exactly,
			},
			"styleCandidates": {
				Type:        genai.TypeArray,
				Description: "Exactly 5 candidate style-tag sets",
				Items:       &genai.Schema{Type: genai.TypeString},
				MinItems:    &exactly,
				MaxItems:    &exactly,
			},
			"bestSelection":        selectionSchema(),
			"alternativeSelection": selectionSchema(),
		},
		Required: []string{"analysis", "titleCandidates", "styleCandidates", "bestSelection", "alternativeSelection"},
	}
}

// RefineSchema returns the response schema for second-phase refinement:
// just the two selections, no candidate lists.
func RefineSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"bestSelection":        selectionSchema(),
			"alternativeSelection": selectionSchema(),
		},
		Required: []string{"bestSelection", "alternativeSelection"},
	}
}
