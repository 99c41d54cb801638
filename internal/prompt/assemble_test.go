package prompt

import (
	"strings"
	"testing"

	"songsmith/internal/core"
)

func TestAssembleDeterministic(t *testing.T) {
	in := Input{
		Theme:    "late night drive",
		MediaURL: "https://youtube.com/watch?v=abc12345678",
		Metadata: &core.ResolvedMetadata{
			Title:    "Night Drive",
			Author:   "DJ Foo",
			Provider: "YouTube",
		},
		SearchContext: "- Review: moody synthwave",
	}

	first := Assemble(in)
	second := Assemble(in)
	if first != second {
		t.Error("Assemble must produce byte-identical output for identical inputs")
	}
}

func TestAssembleVerifiedMetadataVerbatim(t *testing.T) {
	in := Input{
		Metadata: &core.ResolvedMetadata{
			Title:    "Night Drive",
			Author:   "DJ Foo",
			Provider: "YouTube",
		},
	}

	got := Assemble(in)
	if !strings.Contains(got, "Night Drive") {
		t.Error("Assembled prompt must contain the resolved title verbatim")
	}
	if !strings.Contains(got, "DJ Foo") {
		t.Error("Assembled prompt must contain the resolved author verbatim")
	}
	if !strings.Contains(got, "ground truth") {
		t.Error("Verified block must instruct the model to treat metadata as ground truth")
	}
}

func TestAssembleDeepAnalysisOnlyForYouTube(t *testing.T) {
	youtube := Input{
		Metadata:     &core.ResolvedMetadata{Title: "T", Author: "A", Provider: "YouTube"},
		DeepAnalysis: true,
	}
	if !strings.Contains(Assemble(youtube), "visual and audio content") {
		t.Error("Deep analysis instruction expected for YouTube provider")
	}

	spotify := Input{
		Metadata:     &core.ResolvedMetadata{Title: "T", Author: "A", Provider: "Spotify"},
		DeepAnalysis: true,
	}
	if strings.Contains(Assemble(spotify), "visual and audio content") {
		t.Error("Deep analysis instruction must not apply to non-YouTube providers")
	}
}

func TestAssembleUnresolvedURL(t *testing.T) {
	in := Input{MediaURL: "https://example.com/mystery"}

	got := Assemble(in)
	if !strings.Contains(got, "https://example.com/mystery") {
		t.Error("Best-effort block must include the raw URL")
	}
	if !strings.Contains(got, "do not guess") {
		t.Error("Best-effort block must warn against guessing")
	}
}

func TestAssembleUnresolvedSunoURL(t *testing.T) {
	in := Input{
		MediaURL:     "https://suno.com/song/0196a6d2-1111-2222-3333-444455556666",
		ProviderHint: "Suno",
	}

	got := Assemble(in)
	if !strings.Contains(got, "search capability") {
		t.Error("Suno branch must mention the model's search capability")
	}
}

func TestAssembleThemeVerbatim(t *testing.T) {
	in := Input{Theme: "a storm rolling over the plains & what comes after"}

	got := Assemble(in)
	if !strings.Contains(got, "User theme: a storm rolling over the plains & what comes after") {
		t.Error("Theme must be appended verbatim as a labeled field")
	}
}

func TestAssembleNeverEmpty(t *testing.T) {
	got := Assemble(Input{})
	if strings.TrimSpace(got) == "" {
		t.Fatal("Assembled payload must never be empty")
	}
	if !strings.Contains(got, "high-quality, original song concept") {
		t.Error("Empty input must fall back to the generic concept instruction")
	}
}

func TestAssembleAttachmentSuppressesFallback(t *testing.T) {
	got := Assemble(Input{HasAttachment: true})
	if strings.Contains(got, "high-quality, original song concept") {
		t.Error("Generic fallback must not appear when a binary attachment is present")
	}
}

func TestAssembleMetadataTakesPrecedenceOverRawURL(t *testing.T) {
	in := Input{
		MediaURL: "https://youtube.com/watch?v=abc12345678",
		Metadata: &core.ResolvedMetadata{Title: "T", Author: "A", Provider: "YouTube"},
	}

	got := Assemble(in)
	if strings.Contains(got, "unverified") {
		t.Error("Verified metadata must suppress the best-effort block")
	}
}

func TestAssembleRefineMentionsTitle(t *testing.T) {
	got := AssembleRefine("Night Drive", "analysis text", []string{"synthwave", "darkwave"})
	if !strings.Contains(got, `"Night Drive"`) {
		t.Error("Refine prompt must contain the selected title")
	}
	if !strings.Contains(got, "analysis text") {
		t.Error("Refine prompt must carry the prior analysis")
	}
	if !strings.Contains(got, "- synthwave") || !strings.Contains(got, "- darkwave") {
		t.Error("Refine prompt must list the style candidates")
	}
	if !strings.Contains(got, "deliberately different stylistic approach") {
		t.Error("Refine prompt must request a different alternative approach")
	}
}

func TestAssembleRefineDeterministic(t *testing.T) {
	a := AssembleRefine("T", "x", []string{"s"})
	b := AssembleRefine("T", "x", []string{"s"})
	if a != b {
		t.Error("AssembleRefine must be deterministic")
	}
}
